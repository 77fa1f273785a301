package model

// AnalyticsSummary is the server-computed aggregate over all emails.
// Clients treat it as opaque and replace it wholesale on every refresh.
type AnalyticsSummary struct {
	TotalEmails            int            `json:"total_emails"`
	ResolvedEmails         int            `json:"resolved_emails"`
	PendingEmails          int            `json:"pending_emails"`
	EmailsWithResponses    int            `json:"emails_with_responses"`
	EmailsWithoutResponses int            `json:"emails_without_responses"`
	SentimentDistribution  map[string]int `json:"sentiment_distribution"`
	PriorityDistribution   map[string]int `json:"priority_distribution"`
	AIEngine               string         `json:"ai_engine"`
}

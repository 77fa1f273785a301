package model

import "time"

// Sentiment labels assigned by the analyzer.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Priority labels assigned by the analyzer.
const (
	PriorityUrgent = "Urgent"
	PriorityHigh   = "High"
	PriorityNormal = "Normal"
	PriorityLow    = "Low"
)

// Email lifecycle status.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Email is a classified support email. The server owns every field;
// clients hold read-mostly copies refreshed by polling.
type Email struct {
	ID                  int       `json:"id"`
	Sender              string    `json:"sender"`
	Subject             string    `json:"subject"`
	Body                string    `json:"body"`
	SentDate            time.Time `json:"sent_date"`
	Sentiment           string    `json:"sentiment"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	Priority            string    `json:"priority"`
	Status              string    `json:"status"`
	HasResponse         bool      `json:"has_response"`
	CreatedAt           time.Time `json:"-"`
}

// PriorityRank maps a priority label to its sort rank (lower = more urgent).
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

// Analysis is the result of AI classification of a single email.
type Analysis struct {
	Sentiment  string
	Confidence float64
	Priority   string
	Reasoning  string
}

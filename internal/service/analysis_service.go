package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/ingest"
	"mailtriage/internal/llm"
	"mailtriage/internal/model"
	"mailtriage/pkg/circuitbreaker"
	"mailtriage/pkg/metrics"
)

const fallbackEngine = "Template Fallback"

var positiveWords = []string{
	"thank", "appreciate", "great", "excellent", "good",
	"love", "awesome", "perfect", "satisfied", "happy",
}

var negativeWords = []string{
	"problem", "issue", "error", "broken", "failed", "unable",
	"frustrated", "angry", "terrible", "awful", "disappointed",
}

// AnalysisService classifies emails and drafts replies with the
// configured LLM provider. Every call degrades to a keyword or
// template fallback rather than failing, so ingest never blocks on
// the provider.
type AnalysisService struct {
	provider llm.Provider
	breaker  *circuitbreaker.CircuitBreaker
	logger   *zap.Logger
}

func NewAnalysisService(provider llm.Provider, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		breaker:  circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:   logger,
	}
}

// EngineName reports the active provider's display name.
func (s *AnalysisService) EngineName() string {
	return s.provider.EngineName()
}

// Analyze determines sentiment, confidence and priority for one email.
// Falls back to keyword analysis when the provider fails or returns
// something unparseable.
func (s *AnalysisService) Analyze(ctx context.Context, sender, subject, body string) *model.Analysis {
	prompt := buildAnalysisPrompt(sender, subject, body)

	var raw string
	start := time.Now()
	err := s.breaker.Execute(func() error {
		var genErr error
		raw, genErr = s.provider.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		metrics.RecordLLMCallLatency(s.provider.Name(), "analyze", "error", time.Since(start))
		s.logger.Warn("llm analysis failed, using keyword fallback", zap.Error(err))
		return s.keywordAnalysis(subject, body)
	}
	metrics.RecordLLMCallLatency(s.provider.Name(), "analyze", "ok", time.Since(start))

	analysis, parseErr := parseAnalysis(raw)
	if parseErr != nil {
		s.logger.Warn("could not parse llm analysis, using keyword fallback",
			zap.Error(parseErr),
			zap.String("raw", raw))
		return s.keywordAnalysis(subject, body)
	}
	return analysis
}

// GenerateReply drafts a support reply. Returns the text and the
// engine label that produced it.
func (s *AnalysisService) GenerateReply(ctx context.Context, email *model.Email) (string, string) {
	prompt := buildReplyPrompt(email)

	var raw string
	start := time.Now()
	err := s.breaker.Execute(func() error {
		var genErr error
		raw, genErr = s.provider.Generate(ctx, prompt)
		return genErr
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		metrics.RecordLLMCallLatency(s.provider.Name(), "reply", "error", time.Since(start))
		metrics.IncrementResponseGenerated(fallbackEngine)
		s.logger.Warn("llm reply generation failed, using template", zap.Error(err))
		return templateReply(email.Subject), fallbackEngine
	}
	metrics.RecordLLMCallLatency(s.provider.Name(), "reply", "ok", time.Since(start))
	metrics.IncrementResponseGenerated(s.provider.EngineName())

	return strings.TrimSpace(raw), s.provider.EngineName()
}

func buildAnalysisPrompt(sender, subject, body string) string {
	return fmt.Sprintf(`Analyze the following customer support email and provide a JSON response with sentiment and priority:

Subject: %s
Body: %s
From: %s

Please respond with valid JSON in this exact format:
{
    "sentiment": "Positive|Negative|Neutral",
    "confidence": 0.95,
    "priority": "Urgent|High|Normal|Low",
    "reasoning": "Brief explanation"
}

Priority guidelines:
- Urgent: System outages, billing errors, account access issues, security concerns
- High: Feature requests, login problems, urgent inquiries
- Normal: General questions, feedback, documentation requests
- Low: Compliments, suggestions, non-critical requests`, subject, body, sender)
}

func buildReplyPrompt(email *model.Email) string {
	return fmt.Sprintf(`Generate a professional, helpful email response to this customer support request:

Original Email:
Subject: %s
From: %s
Body: %s

Email Analysis:
- Priority: %s
- Sentiment: %s

Guidelines:
- Be professional, empathetic, and helpful
- Address the customer's specific concern
- Provide clear next steps or solutions when possible
- Use a friendly but professional tone
- Keep response concise but complete
- Do not include any email headers (To:, From:, Subject:)

Generate only the email body content:`, email.Subject, email.Sender, email.Body, email.Priority, email.Sentiment)
}

// parseAnalysis extracts the JSON object from the model output,
// tolerating markdown code fences.
func parseAnalysis(raw string) (*model.Analysis, error) {
	cleaned := extractJSON(raw)

	var parsed struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
		Priority   string  `json:"priority"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis json: %w", err)
	}

	analysis := &model.Analysis{
		Sentiment:  normalizeLabel(parsed.Sentiment, []string{model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral}, model.SentimentNeutral),
		Confidence: parsed.Confidence,
		Priority:   normalizeLabel(parsed.Priority, []string{model.PriorityUrgent, model.PriorityHigh, model.PriorityNormal, model.PriorityLow}, model.PriorityNormal),
		Reasoning:  parsed.Reasoning,
	}
	if analysis.Confidence <= 0 || analysis.Confidence > 1 {
		analysis.Confidence = 0.5
	}
	return analysis, nil
}

// extractJSON pulls a JSON object out of a possibly fenced LLM reply.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.Contains(raw, "```") {
		for _, part := range strings.Split(raw, "```") {
			part = strings.TrimSpace(part)
			part = strings.TrimPrefix(part, "json")
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
				return part
			}
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func normalizeLabel(got string, allowed []string, fallback string) string {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(got), a) {
			return a
		}
	}
	return fallback
}

// keywordAnalysis is the offline fallback: word lists for sentiment,
// urgency scoring for priority.
func (s *AnalysisService) keywordAnalysis(subject, body string) *model.Analysis {
	text := strings.ToLower(subject + " " + body)

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			positive++
		}
	}
	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			negative++
		}
	}

	sentiment := model.SentimentNeutral
	confidence := 0.6
	switch {
	case negative > positive:
		sentiment = model.SentimentNegative
		confidence = 0.8
	case positive > negative:
		sentiment = model.SentimentPositive
		confidence = 0.8
	}

	return &model.Analysis{
		Sentiment:  sentiment,
		Confidence: confidence,
		Priority:   ingest.DeterminePriority(subject, body),
		Reasoning:  "keyword fallback",
	}
}

func templateReply(subject string) string {
	return fmt.Sprintf("Thank you for contacting us regarding '%s'. We have received your message and will respond shortly with a solution. We appreciate your patience.", subject)
}

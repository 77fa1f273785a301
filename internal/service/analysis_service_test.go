package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/model"
)

func TestAnalyzeParsesProviderJSON(t *testing.T) {
	p := &fakeProvider{name: "test", replies: []string{
		`{"sentiment": "Negative", "confidence": 0.92, "priority": "Urgent", "reasoning": "outage"}`,
	}}
	s := NewAnalysisService(p, zap.NewNop())

	a := s.Analyze(context.Background(), "a@b.c", "Server down", "production down")
	assert.Equal(t, model.SentimentNegative, a.Sentiment)
	assert.Equal(t, model.PriorityUrgent, a.Priority)
	assert.InDelta(t, 0.92, a.Confidence, 0.001)
}

func TestAnalyzeHandlesMarkdownFences(t *testing.T) {
	p := &fakeProvider{name: "test", replies: []string{
		"```json\n{\"sentiment\": \"Positive\", \"confidence\": 0.8, \"priority\": \"Low\", \"reasoning\": \"compliment\"}\n```",
	}}
	s := NewAnalysisService(p, zap.NewNop())

	a := s.Analyze(context.Background(), "a@b.c", "Thanks", "great product")
	assert.Equal(t, model.SentimentPositive, a.Sentiment)
	assert.Equal(t, model.PriorityLow, a.Priority)
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	p := &fakeProvider{name: "test", err: errors.New("unreachable")}
	s := NewAnalysisService(p, zap.NewNop())

	a := s.Analyze(context.Background(), "a@b.c", "Urgent problem", "system down, frustrated and angry")
	assert.Equal(t, model.SentimentNegative, a.Sentiment)
	assert.Equal(t, model.PriorityUrgent, a.Priority)
	assert.Equal(t, "keyword fallback", a.Reasoning)
}

func TestAnalyzeFallsBackOnGarbage(t *testing.T) {
	p := &fakeProvider{name: "test", replies: []string{"sorry, I cannot do that"}}
	s := NewAnalysisService(p, zap.NewNop())

	a := s.Analyze(context.Background(), "a@b.c", "thank you so much", "great support, very happy")
	assert.Equal(t, model.SentimentPositive, a.Sentiment)
}

func TestAnalyzeNormalizesBadLabels(t *testing.T) {
	p := &fakeProvider{name: "test", replies: []string{
		`{"sentiment": "angry", "confidence": 5.0, "priority": "sky-high", "reasoning": ""}`,
	}}
	s := NewAnalysisService(p, zap.NewNop())

	a := s.Analyze(context.Background(), "a@b.c", "hello", "hello")
	assert.Equal(t, model.SentimentNeutral, a.Sentiment)
	assert.Equal(t, model.PriorityNormal, a.Priority)
	assert.InDelta(t, 0.5, a.Confidence, 0.001)
}

func TestGenerateReply(t *testing.T) {
	p := &fakeProvider{name: "test", replies: []string{"  Dear customer, ...  "}}
	s := NewAnalysisService(p, zap.NewNop())

	email := &model.Email{Subject: "Login issue", Sender: "a@b.c", Priority: model.PriorityHigh, Sentiment: model.SentimentNegative}
	text, engine := s.GenerateReply(context.Background(), email)
	assert.Equal(t, "Dear customer, ...", text)
	assert.Equal(t, "Test Engine", engine)
}

func TestGenerateReplyTemplateFallback(t *testing.T) {
	p := &fakeProvider{name: "test", err: errors.New("unreachable")}
	s := NewAnalysisService(p, zap.NewNop())

	email := &model.Email{Subject: "Billing error"}
	text, engine := s.GenerateReply(context.Background(), email)
	assert.Contains(t, text, "Thank you for contacting us regarding 'Billing error'")
	assert.Equal(t, fallbackEngine, engine)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prefixed", "Here is the result: {\"a\":1} done", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestParseAnalysisInvalid(t *testing.T) {
	_, err := parseAnalysis("not json at all")
	require.Error(t, err)
}

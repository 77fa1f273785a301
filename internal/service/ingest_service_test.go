package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/ingest"
	"mailtriage/internal/model"
	"mailtriage/internal/mq"
)

const sampleCSV = `sender,subject,body,sent_date
alice@example.com,Cannot access account,I am locked out and need help urgently,2024-01-15 10:30:00
bob@example.com,Team lunch,See you at noon,2024-01-16 09:00:00
carol@example.com,Billing problem,I was charged twice this month,2024-01-17 08:00:00
`

func newTestIngestService(emails EmailStore, pub mq.EventPublisher, inv CacheInvalidator) *IngestService {
	provider := &fakeProvider{name: "test", replies: []string{
		`{"sentiment": "Negative", "confidence": 0.9, "priority": "Urgent", "reasoning": "locked out"}`,
		`{"sentiment": "Negative", "confidence": 0.85, "priority": "High", "reasoning": "billing"}`,
	}}
	analyzer := NewAnalysisService(provider, zap.NewNop())
	processor := ingest.NewProcessor(zap.NewNop())
	return NewIngestService(emails, analyzer, processor, pub, inv, "", zap.NewNop())
}

func TestUploadCSVFiltersAndStores(t *testing.T) {
	emails := newFakeEmailStore()
	pub := &fakePublisher{}
	s := newTestIngestService(emails, pub, nil)

	result, err := s.UploadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// team lunch row is not support traffic
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.TotalInCSV)
	assert.Equal(t, "Test Engine", result.Engine)

	stored, err := emails.ListWithResponseFlag(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, model.PriorityUrgent, stored[0].Priority)
	assert.Equal(t, model.StatusPending, stored[0].Status)

	events := pub.byType(mq.EventEmailIngested)
	assert.Len(t, events, 2)
}

func TestUploadCSVSkipsDuplicates(t *testing.T) {
	emails := newFakeEmailStore()
	pub := &fakePublisher{}
	s := newTestIngestService(emails, pub, nil)

	_, err := s.UploadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	s2 := newTestIngestService(emails, pub, nil)
	result, err := s2.UploadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 2, result.Skipped)
}

func TestUploadCSVInvalidatesAnalyticsCache(t *testing.T) {
	emails := newFakeEmailStore()
	inv := &fakeInvalidator{}
	s := newTestIngestService(emails, &fakePublisher{}, inv)

	result, err := s.UploadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, inv.count())

	// second run stores nothing, cached summary still valid
	s2 := newTestIngestService(emails, &fakePublisher{}, inv)
	result, err = s2.UploadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, inv.count())
}

func TestLoadSamplesMissingFile(t *testing.T) {
	emails := newFakeEmailStore()
	s := newTestIngestService(emails, &fakePublisher{}, nil)
	_, err := s.LoadSamples(context.Background())
	assert.Error(t, err)
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/model"
)

func newTestAnalyticsService(t *testing.T, emails EmailStore) *AnalyticsService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewAnalyticsService(emails, rdb, "Test Engine", zap.NewNop())
}

func TestGetSummaryServesCachedSnapshot(t *testing.T) {
	emails := newFakeEmailStore()
	svc := newTestAnalyticsService(t, emails)
	ctx := context.Background()

	first, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalEmails)

	// a write that bypasses the services is invisible until the TTL runs out
	_, err = emails.Create(ctx, &model.Email{Sender: "a@b.c", Subject: "x", Status: model.StatusPending})
	require.NoError(t, err)

	cached, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.TotalEmails)
}

func TestIngestInvalidatesSummary(t *testing.T) {
	emails := newFakeEmailStore()
	svc := newTestAnalyticsService(t, emails)
	ctx := context.Background()

	// prime the cache the way the dashboard poller does at startup
	primed, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, primed.TotalEmails)

	ingestSvc := newTestIngestService(emails, &fakePublisher{}, svc)
	result, err := ingestSvc.UploadCSV(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)

	after, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, after.TotalEmails)
}

func TestClearAllInvalidatesSummary(t *testing.T) {
	emails := newFakeEmailStore()
	svc := newTestAnalyticsService(t, emails)
	ctx := context.Background()

	_, err := emails.Create(ctx, &model.Email{Sender: "a@b.c", Subject: "x", Status: model.StatusPending})
	require.NoError(t, err)

	primed, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, primed.TotalEmails)

	emailSvc := NewEmailService(emails, svc, &fakePublisher{}, zap.NewNop())
	_, _, err = emailSvc.ClearAll(ctx)
	require.NoError(t, err)

	after, err := svc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalEmails)
}

func TestGetSummaryWithoutCache(t *testing.T) {
	emails := newFakeEmailStore()
	svc := NewAnalyticsService(emails, nil, "Test Engine", zap.NewNop())

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test Engine", summary.AIEngine)
}

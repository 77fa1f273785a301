package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mailtriage/internal/model"
)

const (
	analyticsCacheKey = "analytics:summary"
	analyticsCacheTTL = 30 * time.Second
)

// AnalyticsService aggregates mailbox statistics, with a short-lived
// Redis cache in front of the SQL aggregates.
type AnalyticsService struct {
	emails EmailStore
	cache  *redis.Client
	engine string
	logger *zap.Logger
}

func NewAnalyticsService(emails EmailStore, cache *redis.Client, engine string, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		emails: emails,
		cache:  cache,
		engine: engine,
		logger: log,
	}
}

// GetSummary returns the analytics snapshot. Cache errors are
// non-fatal; the database is always authoritative.
func (s *AnalyticsService) GetSummary(ctx context.Context) (*model.AnalyticsSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, analyticsCacheKey).Result()
		if err == nil {
			var summary model.AnalyticsSummary
			if uerr := json.Unmarshal([]byte(cached), &summary); uerr == nil {
				return &summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	summary, err := s.emails.Aggregates(ctx)
	if err != nil {
		return nil, err
	}
	summary.AIEngine = s.engine

	if s.cache != nil {
		data, merr := json.Marshal(summary)
		if merr == nil {
			if err := s.cache.Set(ctx, analyticsCacheKey, data, analyticsCacheTTL).Err(); err != nil {
				s.logger.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}

	return summary, nil
}

// Invalidate drops the cached snapshot. Called after bulk mutations.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, analyticsCacheKey).Err(); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

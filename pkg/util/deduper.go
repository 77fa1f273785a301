package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards against double-processing of redelivered events using
// a Redis SetNX lock per handler+email pair. It fails open: if Redis is
// unreachable, processing proceeds and the handler's own idempotency
// has to absorb the duplicate.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

func NewDeduperWithLogger(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce reports whether this handler sees the email for the first
// time within the TTL window. False means a duplicate delivery.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, emailID int) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, emailID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// redis 不可用时放行，宁可重复不可丢
		if d.logger != nil {
			d.logger.Warn("dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.Int("email_id", emailID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("duplicate event skipped",
			zap.String("handler", handler),
			zap.Int("email_id", emailID),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

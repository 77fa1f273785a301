package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryCounter tracks per-message delivery attempts in Redis so a
// redelivered message can be dead-lettered after too many failures.
// Counts expire on their own; a stuck counter never outlives the TTL.
type RetryCounter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRetryCounter(rdb *redis.Client, ttl time.Duration) *RetryCounter {
	return &RetryCounter{rdb: rdb, ttl: ttl}
}

// IncrementAndGet bumps the attempt count and returns the new value.
// The TTL is attached on the first attempt only.
func (r *RetryCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		r.rdb.Expire(ctx, key, r.ttl)
	}
	return n, nil
}

func (r *RetryCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Reset clears the counter after a successful handle or a DLQ hand-off.
func (r *RetryCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func FormatRetryKey(handler string, emailID int) string {
	return fmt.Sprintf("retry:%s:%d", handler, emailID)
}

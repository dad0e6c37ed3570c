// Package ratelimit provides a per-user fixed-window request limiter on
// Redis. This is burst protection in front of the quota policy, not a
// substitute for it: quotas are accounted against the usage ledger.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow reports whether the user may make another request in the current
// window. Callers are expected to fail open when err is non-nil.
func (l *Limiter) Allow(ctx context.Context, userID string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("ratelimit:user:%s:%d", userID, bucket)

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: %w", err)
	}
	if n == 1 {
		// First hit in the window sets the expiry.
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: %w", err)
		}
	}

	return n <= int64(l.limit), nil
}

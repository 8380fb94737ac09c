package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/shared/ratelimiter"
)

// NewRateLimiter creates the /api request limiter.
// If Redis is available, it returns a Redis-backed limiter shared by every instance.
// Otherwise, it falls back to an in-process limiter whose expired windows are swept until ctx ends.
func NewRateLimiter(ctx context.Context, rdb *redis.Client, limit int, window time.Duration) ratelimiter.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, "ratelimit", limit, window)
	}
	rl := ratelimiter.NewRateLimiter(limit, window)
	go rl.RunSweeper(ctx)
	return rl
}

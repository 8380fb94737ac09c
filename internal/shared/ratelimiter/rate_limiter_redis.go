package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter は Redis の INCR/PEXPIRE を使い、全インスタンスで共有される Limiter です。
type RedisLimiter struct {
	client   redis.Cmdable
	prefix   string
	limit    int
	interval time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は Redis を使う RedisLimiter を生成します。キーは "<prefix>:<key>" で保存されます。
func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, interval time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		limit:    limit,
		interval: interval,
	}
}

func (r *RedisLimiter) windowKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Allow は key のカウンタを加算します。最初のリクエストでウィンドウの期限を設定します。
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := r.windowKey(key)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, k, r.interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	d := Decision{Limit: r.limit, Remaining: max(r.limit-int(count), 0)}
	if int(count) <= r.limit {
		d.Allowed = true
		return d, nil
	}

	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// 期限が失われたキーはウィンドウを張り直す
		if err := r.client.PExpire(ctx, k, r.interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = r.interval
	}
	d.RetryAfter = ttl
	return d, nil
}

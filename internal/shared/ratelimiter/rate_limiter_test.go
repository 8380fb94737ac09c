package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newMemoryLimiter(limit int, interval time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, interval)
	rl.now = clock.Now
	return rl, clock
}

// TestRateLimiter_Allow は上限到達後に拒否され、interval 経過でリセットされることを検証します。
func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl, clock := newMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	clock.Advance(20 * time.Second)
	d, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 40*time.Second, d.RetryAfter)

	// 別キーは独立したウィンドウを持つ
	d, err = rl.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	clock.Advance(40 * time.Second)
	d, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "window should reset after the interval")
	assert.Equal(t, 2, d.Remaining)
}

// TestRateLimiter_Sweep は期限切れのウィンドウだけが削除されることを検証します。
func TestRateLimiter_Sweep(t *testing.T) {
	t.Parallel()

	rl, clock := newMemoryLimiter(1, time.Minute)
	ctx := context.Background()
	_, _ = rl.Allow(ctx, "a")
	clock.Advance(30 * time.Second)
	_, _ = rl.Allow(ctx, "b")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, rl.Sweep())
	assert.Len(t, rl.windows, 1)
	assert.Contains(t, rl.windows, "b")
}

// TestRateLimiter_Concurrent は並行アクセスでも上限を超えて許可しないことを検証します。
func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(50, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := rl.Allow(context.Background(), "shared")
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

// TestRedisLimiter_Allow は Redis 上で上限と RetryAfter が正しく計算されることを検証します。
func TestRedisLimiter_Allow(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRedisLimiter(client, "", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := rl.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.InDelta(t, time.Minute.Seconds(), d.RetryAfter.Seconds(), 1)

	assert.True(t, mr.Exists("ratelimit:ip:1.2.3.4"))
	mr.FastForward(time.Minute + time.Second)
	assert.False(t, mr.Exists("ratelimit:ip:1.2.3.4"))

	d, err = rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

// TestRedisLimiter_Errors は Redis のエラーが呼び出し元に返されることを検証します。
func TestRedisLimiter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(mock redismock.ClientMock)
	}{
		{
			name: "incr fails",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr("api:k").SetErr(errors.New("connection refused"))
			},
		},
		{
			name: "expire fails",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr("api:k").SetVal(1)
				mock.ExpectPExpire("api:k", time.Minute).SetErr(errors.New("connection refused"))
			},
		},
		{
			name: "ttl fails",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr("api:k").SetVal(5)
				mock.ExpectPTTL("api:k").SetErr(errors.New("connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			rl := NewRedisLimiter(client, "api", 1, time.Minute)
			_, err := rl.Allow(context.Background(), "k")

			assert.Error(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestRedisLimiter_RestoresMissingExpiry は期限のないキーにウィンドウが再設定されることを検証します。
func TestRedisLimiter_RestoresMissingExpiry(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	mock.ExpectIncr("api:k").SetVal(2)
	mock.ExpectPTTL("api:k").SetVal(-1)
	mock.ExpectPExpire("api:k", time.Minute).SetVal(true)

	rl := NewRedisLimiter(client, "api", 1, time.Minute)
	d, err := rl.Allow(context.Background(), "k")

	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

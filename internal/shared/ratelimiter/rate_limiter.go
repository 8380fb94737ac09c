// Package ratelimiter は、クライアント単位の固定ウィンドウ方式レートリミッターを提供します。
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Decision は Allow 1回分の判定結果です。
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter は、キーごとに固定ウィンドウ内のリクエスト数を数えるインターフェースです。
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter はメモリ上の Limiter です。キーごとに最初のリクエストから interval 経過でリセットされます。
type RateLimiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しい RateLimiter のインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow は key のリクエストを1件記録し、上限内かを判定します。
func (rl *RateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
	}

	w.count++
	d := Decision{Limit: rl.limit, Remaining: max(rl.limit-w.count, 0)}
	if w.count > rl.limit {
		d.RetryAfter = rl.interval - now.Sub(w.lastReset)
		return d, nil
	}
	d.Allowed = true
	return d, nil
}

// Sweep は期限切れのウィンドウを削除し、削除件数を返します。
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

// RunSweeper は ctx が終了するまで interval ごとに Sweep を呼び出します。
func (rl *RateLimiter) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

package planner

import (
	"context"
	"sync"
	"time"
)

// Default throttle for LLM calls: at most 5 calls per 60 seconds,
// enforced as a fixed 12-second floor between consecutive calls.
const (
	LimiterInterval = 60 * time.Second
	LimiterLimit    = 5
)

// CallLimiter enforces a minimum spacing between consecutive LLM calls.
// It is a fixed-interval throttle, not a token bucket: bursts are never
// allowed to dip below the floor spacing.
type CallLimiter struct {
	mu      sync.Mutex
	last    time.Time
	spacing time.Duration
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewCallLimiter creates a limiter spacing calls at interval/limit.
func NewCallLimiter(interval time.Duration, limit int) *CallLimiter {
	return &CallLimiter{
		spacing: interval / time.Duration(limit),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Wait blocks until the caller may proceed with an LLM call. Each caller
// reserves the next slot under the lock, so concurrent waiters are spaced
// out rather than released together.
func (l *CallLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	var wait time.Duration
	if !l.last.IsZero() {
		next := l.last.Add(l.spacing)
		if now.Before(next) {
			wait = next.Sub(now)
		}
	}
	if wait > 0 {
		l.last = l.last.Add(l.spacing)
	} else {
		l.last = now
	}
	l.mu.Unlock()

	if wait > 0 {
		return l.sleep(ctx, wait)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultHitPeriod is the minimum gap between two requests to the same
// host.
const DefaultHitPeriod = 2 * time.Second

// rateLimiter spaces requests out per host. A host is hit at most once per
// interval; early arrivals sleep out the remainder.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     map[string]time.Time
	disabled bool
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval, next: make(map[string]time.Time)}
}

// wait blocks until host may be hit again and claims the slot after that.
func (r *rateLimiter) wait(ctx context.Context, host string) error {
	r.mu.Lock()
	if r.disabled {
		r.mu.Unlock()
		return nil
	}
	now := time.Now()
	at := r.next[host]
	if at.Before(now) {
		at = now
	}
	r.next[host] = at.Add(r.interval)
	r.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		return nil
	}
	logger.Debug().Str("host", host).Dur("wait", d).Msg("rate limit")
	return wait(ctx, d)
}

// disable turns the limiter off and returns a function that restores the
// previous state.
func (r *rateLimiter) disable() (restore func()) {
	r.mu.Lock()
	prev := r.disabled
	r.disabled = true
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.disabled = prev
		r.mu.Unlock()
	}
}

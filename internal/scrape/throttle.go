package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between requests to the same origin.
// Callers reserve the next free slot under the lock and then sleep outside it,
// so concurrent callers queue up instead of bursting.
type Throttle struct {
	next     map[string]time.Time
	now      func() time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewThrottle creates a throttle with the given minimum interval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval < 0 {
		interval = 0
	}
	return &Throttle{
		next:     make(map[string]time.Time),
		now:      time.Now,
		interval: interval,
	}
}

// Wait blocks until origin may be contacted again or the context is canceled.
func (t *Throttle) Wait(ctx context.Context, origin string) error {
	delay := t.reserve(origin)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// reserve claims the next slot for origin and returns how long to wait for it.
func (t *Throttle) reserve(origin string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	slot := t.next[origin]
	if slot.Before(now) {
		slot = now
	}
	t.next[origin] = slot.Add(t.interval)
	return slot.Sub(now)
}

// Interval returns the configured minimum interval.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClockStopped is returned by waits against a stopped Clock.
var ErrClockStopped = errors.New("clock stopped")

// Clock is the virtual clock. Time advances only through Advance, called by
// the ticking routine in Run or directly by tests.
type Clock struct {
	interval time.Duration

	mu      sync.Mutex
	tick    uint64
	stopped bool
	changed broadcast
	done    chan struct{}
}

// NewClock creates a stopped-at-zero clock that ticks every interval once Run is called.
func NewClock(interval time.Duration) (*Clock, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: tick interval must be positive, got %v", ErrInvalidConfig, interval)
	}
	return &Clock{
		interval: interval,
		changed:  newBroadcast(),
		done:     make(chan struct{}),
	}, nil
}

// Interval returns the wall-clock duration of one tick.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Now returns the current tick.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Advance moves the clock forward one tick and wakes every waiter.
// It is a no-op on a stopped clock. Returns the tick after the call.
func (c *Clock) Advance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return c.tick
	}
	c.tick++
	c.changed.notifyAll()
	return c.tick
}

// Stop halts the clock. Every current and future wait that has not reached
// its target returns ErrClockStopped. Safe to call more than once.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
	c.changed.notifyAll()
}

// Stopped reports whether Stop has been called.
func (c *Clock) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// WaitUntil blocks until the tick reaches target, the clock stops, or ctx is done.
func (c *Clock) WaitUntil(ctx context.Context, target uint64) error {
	for {
		c.mu.Lock()
		if c.tick >= target {
			c.mu.Unlock()
			return nil
		}
		if c.stopped {
			c.mu.Unlock()
			return ErrClockStopped
		}
		ch := c.changed.wait()
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			// A target reached by the time of cancellation still counts.
			if c.Now() >= target {
				return nil
			}
			return ctx.Err()
		}
	}
}

// Wait blocks for n ticks from now. Wait(ctx, 0) returns immediately.
func (c *Clock) Wait(ctx context.Context, n uint64) error {
	if n == 0 {
		return nil
	}
	return c.WaitUntil(ctx, c.Now()+n)
}

// Run is the ticking routine. It advances the clock once per interval until
// ctx is done, Stop is called, or the tick reaches horizon (0 = no horizon).
// The clock is always stopped when Run returns.
func (c *Clock) Run(ctx context.Context, horizon uint64) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer c.Stop()

	if horizon > 0 && c.Now() >= horizon {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case <-ticker.C:
			if now := c.Advance(); horizon > 0 && now >= horizon {
				return nil
			}
		}
	}
}

// Package ratelimit implements the per-product add-to-cart cooldown.
package ratelimit

import (
	"time"

	"github.com/abgdnv/shopease/internal/catalog"
)

// Decision is the outcome of TryAdd. Remaining is zero when Allowed.
type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

// Cooldown accepts at most one add per product within each window.
// Only accepted attempts start a window. It is not safe for concurrent use
// and is owned by a single view.
type Cooldown struct {
	window time.Duration
	last   map[catalog.ProductID]time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[catalog.ProductID]time.Time),
	}
}

// Window returns the configured cooldown duration.
func (c *Cooldown) Window() time.Duration { return c.window }

// TryAdd records an add attempt for id at now.
func (c *Cooldown) TryAdd(id catalog.ProductID, now time.Time) Decision {
	if remaining := c.Remaining(id, now); remaining > 0 {
		return Decision{Allowed: false, Remaining: remaining}
	}
	c.last[id] = now
	return Decision{Allowed: true}
}

// Remaining reports how long id stays blocked at now, without recording an attempt.
func (c *Cooldown) Remaining(id catalog.ProductID, now time.Time) time.Duration {
	last, ok := c.last[id]
	if !ok {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed < 0 || elapsed >= c.window {
		return 0
	}
	return c.window - elapsed
}

// Reset forgets every recorded attempt.
func (c *Cooldown) Reset() {
	clear(c.last)
}

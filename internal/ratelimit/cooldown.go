package ratelimit

import (
	"sync"
	"time"
)

// Cooldown tracks when a key last performed an action and rejects repeats
// inside a fixed window. This is the server-side version of the client's
// double-click debounce on like/favorite/view actions: the first write in
// a window succeeds, duplicates are silently dropped by callers.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time

	lastSweep time.Time
}

// NewCooldown creates a cooldown tracker with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Hit records an attempt for key. Returns true if the attempt is the
// first inside the window, false if it is still cooling down.
func (c *Cooldown) Hit(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	if last, ok := c.seen[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.seen[key] = now
	return true
}

// Remaining returns how long until key may act again. Zero when the key
// is not cooling down.
func (c *Cooldown) Remaining(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.seen[key]
	if !ok {
		return 0
	}
	remaining := c.window - c.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// sweepLocked drops expired entries. Runs at most once per window so a
// busy tracker doesn't rescan the map on every hit.
func (c *Cooldown) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < c.window {
		return
	}
	c.lastSweep = now
	for key, last := range c.seen {
		if now.Sub(last) >= c.window {
			delete(c.seen, key)
		}
	}
}

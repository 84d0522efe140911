package ratelimit

import (
	"testing"
	"time"
)

func TestCooldown_Hit(t *testing.T) {
	c := NewCooldown(time.Hour)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if !c.Hit("usr-1:like:bnd-1") {
		t.Error("first hit should pass")
	}
	if c.Hit("usr-1:like:bnd-1") {
		t.Error("repeat inside window should be blocked")
	}
	if !c.Hit("usr-2:like:bnd-1") {
		t.Error("other keys are independent")
	}

	// Window elapses.
	now = now.Add(time.Hour + time.Second)
	if !c.Hit("usr-1:like:bnd-1") {
		t.Error("hit after window should pass")
	}
}

func TestCooldown_Remaining(t *testing.T) {
	c := NewCooldown(10 * time.Minute)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if got := c.Remaining("key"); got != 0 {
		t.Errorf("Remaining() for unseen key = %v, want 0", got)
	}

	c.Hit("key")
	now = now.Add(4 * time.Minute)
	if got := c.Remaining("key"); got != 6*time.Minute {
		t.Errorf("Remaining() = %v, want 6m", got)
	}

	now = now.Add(10 * time.Minute)
	if got := c.Remaining("key"); got != 0 {
		t.Errorf("Remaining() after window = %v, want 0", got)
	}
}

func TestCooldown_SweepDropsExpired(t *testing.T) {
	c := NewCooldown(time.Minute)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		c.Hit(key)
	}

	now = now.Add(2 * time.Minute)
	c.Hit("d") // triggers sweep

	c.mu.Lock()
	size := len(c.seen)
	c.mu.Unlock()

	if size != 1 {
		t.Errorf("expired entries not swept, map size = %d, want 1", size)
	}
}

// Package util holds small helpers shared by the commands.
package util

import (
	"sync"
	"time"
)

// Throttle lets through at most one event per interval and drops the rest.
// It is safe for concurrent use.
type Throttle struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	dropped int
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// Ok reports whether an event may pass now, along with the number of events
// dropped since the previous one that passed.
func (t *Throttle) Ok() (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Before(t.last.Add(t.interval)) {
		t.dropped++
		return false, 0
	}
	dropped := t.dropped
	t.last, t.dropped = now, 0
	return true, dropped
}

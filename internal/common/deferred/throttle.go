package deferred

import "time"

// Throttle lets through at most one event per interval and drops the rest.
// It never reorders events. Not safe for concurrent use.
type Throttle struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewThrottle uses time.Now when now is nil.
func NewThrottle(interval time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{interval: interval, now: now}
}

// Allow reports whether an event may pass now and records it.
func (t *Throttle) Allow() bool {
	n := t.now()
	if !t.last.IsZero() && n.Sub(t.last) < t.interval {
		return false
	}
	t.last = n
	return true
}

func (t *Throttle) Reset() { t.last = time.Time{} }

package deferred

import (
	"sync"
	"time"
)

// ============================================================
// Single-slot deferred task
// ============================================================

// Task holds at most one pending function. Scheduling again replaces the
// pending function and restarts the quiet period.
type Task struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewTask creates an idle task that fires delay after the last Schedule.
func NewTask(delay time.Duration) *Task {
	return &Task{delay: delay}
}

// Schedule replaces any pending callback and restarts the delay.
func (t *Task) Schedule(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.pending = fn
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Cancel drops the pending function. It reports whether one was pending.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	had := t.pending != nil
	t.stopLocked()
	t.gen++
	t.pending = nil
	return had
}

// Flush runs the pending function now, on the caller's goroutine.
func (t *Task) Flush() {
	t.mu.Lock()
	fn := t.pending
	t.stopLocked()
	t.gen++
	t.pending = nil
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.pending == nil {
		t.mu.Unlock()
		return
	}
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	fn()
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

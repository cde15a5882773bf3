// Package schedule provides a cancellable one-shot timer with
// cancel-and-replace semantics, used for search debouncing and status
// message expiry.
package schedule

import (
	"sync"
	"time"
)

// Timer runs at most one pending callback. Scheduling a new callback cancels
// the previous one; a callback whose timer fired concurrently with a Reset or
// Stop is discarded by generation check.
//
// The zero value is ready to use.
type Timer struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// Reset cancels any pending callback and schedules fn to run after d.
// Reset after Close is a no-op.
func (t *Timer) Reset(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}

	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			// Superseded between firing and acquiring the lock
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Stop cancels the pending callback, if any, and reports whether one was
// pending.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}

// Pending reports whether a callback is scheduled and has not run yet.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Close stops the timer permanently. Later Resets are ignored.
func (t *Timer) Close() {
	t.Stop()
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

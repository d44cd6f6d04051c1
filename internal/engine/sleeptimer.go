package engine

import (
	"sync"
	"time"
)

// SleepTimer schedules a single callback after a quiet period. Reset
// supersedes any pending deadline: a callback that has not yet acquired
// the timer's lock when Reset runs is abandoned, so resetting always wins
// over a concurrent expiry.
type SleepTimer struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
	fn    func()
}

// NewSleepTimer creates a stopped timer that will invoke fn on expiry.
// fn runs on the timer goroutine without holding the timer's lock, so it
// may call Reset or Stop.
func NewSleepTimer(fn func()) *SleepTimer {
	return &SleepTimer{fn: fn}
}

// Reset (re)schedules the callback d from now, cancelling any pending
// deadline.
func (t *SleepTimer) Reset(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stale := t.gen != gen
		t.mu.Unlock()
		if stale {
			return
		}
		t.fn()
	})
}

// Stop cancels any pending deadline. The callback will not fire until the
// next Reset.
func (t *SleepTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

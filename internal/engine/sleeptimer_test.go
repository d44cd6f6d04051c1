package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSleepTimer_Fires(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{})
	st := NewSleepTimer(func() { close(fired) })
	st.Reset(10 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSleepTimer_ResetSupersedesPendingDeadline(t *testing.T) {
	t.Parallel()

	var fires atomic.Int32
	st := NewSleepTimer(func() { fires.Add(1) })

	st.Reset(40 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	st.Reset(40 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// The original deadline has passed but was superseded.
	if got := fires.Load(); got != 0 {
		t.Fatalf("fires = %d before the rearmed deadline, want 0", got)
	}

	time.Sleep(40 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Fatalf("fires = %d, want exactly 1", got)
	}
}

func TestSleepTimer_StopPreventsFiring(t *testing.T) {
	t.Parallel()

	var fires atomic.Int32
	st := NewSleepTimer(func() { fires.Add(1) })

	st.Reset(10 * time.Millisecond)
	st.Stop()
	time.Sleep(30 * time.Millisecond)

	if got := fires.Load(); got != 0 {
		t.Fatalf("fires = %d after Stop, want 0", got)
	}
}

func TestSleepTimer_CallbackMayRearm(t *testing.T) {
	t.Parallel()

	var fires atomic.Int32
	done := make(chan struct{})
	var st *SleepTimer
	st = NewSleepTimer(func() {
		if fires.Add(1) < 2 {
			st.Reset(5 * time.Millisecond)
			return
		}
		close(done)
	})
	st.Reset(5 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire twice")
	}
}

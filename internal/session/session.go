// Package session holds the per-conversation state of the assistant: the
// wake/sleep state machine position, the active personality mode, the
// consecutive recognition-failure counter, activity timestamps, and the
// bounded exchange [History].
//
// State lives in one explicit [Session] struct guarded by a single mutex so
// the conversation loop, the sleep timer callback, and tests all observe a
// consistent snapshot.
package session

import (
	"sync"
	"time"

	"github.com/orin-ai/orin/internal/personality"
)

// State is the position of the conversation state machine.
type State int

const (
	// StateAsleep means the assistant ignores everything except wake phrases.
	StateAsleep State = iota

	// StateAwake means recognised text is treated as a command.
	StateAwake

	// StateTerminated is terminal; the conversation loop exits.
	StateTerminated
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateAsleep:
		return "asleep"
	case StateAwake:
		return "awake"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session is the mutable conversation state for a single assistant run.
// All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	state     State
	mode      personality.Mode
	userName  string
	prefs     map[string]string
	startedAt time.Time

	consecutiveMisses int
	lastCommand       time.Time

	history *History
}

// New creates a Session that starts asleep in [personality.ModeFriendly]
// with an empty history of the default capacity.
func New(userName string) *Session {
	if userName == "" {
		userName = "User"
	}
	return &Session{
		state:     StateAsleep,
		mode:      personality.ModeFriendly,
		userName:  userName,
		prefs:     make(map[string]string),
		startedAt: time.Now(),
		history:   NewHistory(DefaultHistoryCap),
	}
}

// State returns the current state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wake transitions Asleep → Awake. It reports whether a transition happened;
// waking an already-awake or terminated session is a no-op.
func (s *Session) Wake() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAsleep {
		return false
	}
	s.state = StateAwake
	return true
}

// Sleep transitions Awake → Asleep. Sleeping an asleep or terminated session
// is a no-op, which makes the sleep-timer callback idempotent.
func (s *Session) Sleep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwake {
		return false
	}
	s.state = StateAsleep
	return true
}

// Terminate moves the session to [StateTerminated]. The transition is
// one-way; every later Wake or Sleep is ignored.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateTerminated
}

// Mode returns the active personality mode.
func (s *Session) Mode() personality.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the active personality mode.
func (s *Session) SetMode(m personality.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// RecordMiss increments the consecutive recognition-failure counter and
// returns the new value.
func (s *Session) RecordMiss() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveMisses++
	return s.consecutiveMisses
}

// ResetMisses clears the consecutive recognition-failure counter. Called on
// every successful recognition.
func (s *Session) ResetMisses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveMisses = 0
}

// Misses returns the current consecutive recognition-failure count.
func (s *Session) Misses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveMisses
}

// MarkCommand records the time the current command started processing.
// The conversation loop uses this to extend the listen timeout during an
// active back-and-forth.
func (s *Session) MarkCommand() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCommand = time.Now()
}

// LastCommand returns the time of the most recent command, or the zero time
// when no command has been processed yet.
func (s *Session) LastCommand() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommand
}

// UserName returns the name the session was created with.
func (s *Session) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userName
}

// SetPreference stores a user preference under key.
func (s *Session) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
}

// Preference returns the stored preference for key, if any.
func (s *Session) Preference(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.prefs[key]
	return v, ok
}

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Duration returns how long the session has been running.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt())
}

// History returns the session's exchange history.
func (s *Session) History() *History {
	return s.history
}

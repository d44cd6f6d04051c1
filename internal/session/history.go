package session

import (
	"strings"
	"sync"
	"time"
)

// DefaultHistoryCap is the number of exchanges retained before the oldest
// entries are evicted.
const DefaultHistoryCap = 20

// Turn is a single user → assistant exchange.
type Turn struct {
	// Timestamp records when the exchange completed.
	Timestamp time.Time

	// User is the recognised user text (lower-cased command form).
	User string

	// Assistant is the reply that was spoken.
	Assistant string
}

// History is a bounded FIFO of recent exchanges. When the buffer is full the
// oldest entry is evicted on every [History.Append].
//
// All methods are safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	turns   []Turn
	maxSize int
}

// NewHistory creates a history that retains at most maxSize exchanges.
// A maxSize <= 0 falls back to [DefaultHistoryCap].
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistoryCap
	}
	return &History{
		turns:   make([]Turn, 0, maxSize),
		maxSize: maxSize,
	}
}

// Append records an exchange, evicting the oldest entry if the buffer is full.
func (h *History) Append(user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, Turn{
		Timestamp: time.Now(),
		User:      user,
		Assistant: assistant,
	})
	if len(h.turns) > h.maxSize {
		keep := h.turns[len(h.turns)-h.maxSize:]
		// Copy to a fresh slice so evicted entries can be garbage collected.
		fresh := make([]Turn, len(keep), h.maxSize)
		copy(fresh, keep)
		h.turns = fresh
	}
}

// Len returns the number of retained exchanges.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Recent returns up to n of the most recent exchanges in chronological order
// (oldest first). The returned slice is a copy.
func (h *History) Recent(n int) []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.turns) {
		n = len(h.turns)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Context renders the last n exchanges as alternating "User:" / "Assistant:"
// lines for inclusion in a generative system prompt. Returns "" when the
// history is empty.
func (h *History) Context(n int) string {
	recent := h.Recent(n)
	if len(recent) == 0 {
		return ""
	}

	var b strings.Builder
	for i, turn := range recent {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("User: ")
		b.WriteString(turn.User)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Assistant)
	}
	return b.String()
}

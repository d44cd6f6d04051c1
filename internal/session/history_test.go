package session

import (
	"fmt"
	"strings"
	"testing"
)

func TestHistory_AppendEvictsOldest(t *testing.T) {
	t.Parallel()

	h := NewHistory(20)
	for i := 1; i <= 25; i++ {
		h.Append(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	if h.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", h.Len())
	}

	// After 25 appends the retained window is exchanges 6..25 and the five
	// most recent are 21..25.
	recent := h.Recent(5)
	if len(recent) != 5 {
		t.Fatalf("Recent(5) returned %d turns", len(recent))
	}
	for i, turn := range recent {
		want := fmt.Sprintf("question %d", 21+i)
		if turn.User != want {
			t.Errorf("Recent(5)[%d].User = %q, want %q", i, turn.User, want)
		}
	}

	all := h.Recent(20)
	if all[0].User != "question 6" {
		t.Errorf("oldest retained = %q, want %q", all[0].User, "question 6")
	}
}

func TestHistory_RecentBounds(t *testing.T) {
	t.Parallel()

	h := NewHistory(20)
	if got := h.Recent(5); got != nil {
		t.Errorf("Recent on empty history = %v, want nil", got)
	}

	h.Append("a", "b")
	if got := h.Recent(10); len(got) != 1 {
		t.Errorf("Recent(10) with one entry returned %d turns", len(got))
	}
	if got := h.Recent(0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestHistory_Context(t *testing.T) {
	t.Parallel()

	h := NewHistory(20)
	if h.Context(5) != "" {
		t.Error("Context on empty history should be empty")
	}

	h.Append("what time is it", "It's currently 10:00 AM")
	h.Append("thanks", "You're welcome")

	got := h.Context(5)
	want := "User: what time is it\nAssistant: It's currently 10:00 AM\nUser: thanks\nAssistant: You're welcome"
	if got != want {
		t.Errorf("Context(5) = %q, want %q", got, want)
	}

	// Context window smaller than the history keeps only the newest turns.
	if got := h.Context(1); strings.Contains(got, "what time") {
		t.Errorf("Context(1) includes older turn: %q", got)
	}
}

func TestNewHistory_DefaultCap(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	for i := 0; i < 50; i++ {
		h.Append("u", "a")
	}
	if h.Len() != DefaultHistoryCap {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistoryCap)
	}
}

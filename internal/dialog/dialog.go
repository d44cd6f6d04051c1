// Package dialog defines the generative conversation backend the engine
// consults before falling back to the deterministic catalog.
//
// A [Backend] receives a fully assembled [Request] and returns one reply.
// Implementations live in the anyllm and openai subpackages; the mock
// subpackage provides a scripted backend for tests.
package dialog

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Generation parameters every backend applies unless overridden.
const (
	// DefaultMaxTokens caps the reply length; spoken answers should stay
	// short.
	DefaultMaxTokens = 150

	// DefaultTemperature is the sampling temperature.
	DefaultTemperature = 0.7

	// DefaultTimeout bounds a single backend round trip.
	DefaultTimeout = 10 * time.Second
)

// ErrEmptyReply is returned when the backend answered without usable text.
var ErrEmptyReply = errors.New("dialog: backend returned an empty reply")

// Request is one generative turn.
type Request struct {
	// System is the assembled system prompt: persona tone, assistant
	// identity, and recent conversation context.
	System string

	// UserText is the user's command.
	UserText string
}

// Backend produces a reply for a request. Implementations must respect ctx
// cancellation and return a non-empty reply or an error.
type Backend interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// SystemPrompt assembles the system prompt from the personality tone line,
// the assistant's display name, and the recent conversation context (may be
// empty).
func SystemPrompt(assistantName, tone, conversationContext string) string {
	var b strings.Builder
	b.WriteString(tone)
	b.WriteString("\nYour name is ")
	b.WriteString(assistantName)
	b.WriteString(". Keep replies short enough to be spoken aloud.")
	if conversationContext != "" {
		b.WriteString("\n\nRecent conversation context:\n")
		b.WriteString(conversationContext)
	}
	return b.String()
}

// Package mock provides a scripted dialog backend for tests.
package mock

import (
	"context"
	"sync"

	"github.com/orin-ai/orin/internal/dialog"
)

// Backend is a scripted dialog.Backend. Replies are consumed in order; when
// the script is exhausted the last reply repeats. A non-nil Err is returned
// instead of a reply.
type Backend struct {
	mu sync.Mutex

	// Replies is the scripted reply sequence.
	Replies []string

	// Err, when set, is returned by every Respond call.
	Err error

	// Delay, when set, makes Respond block until the delay elapses or ctx
	// is cancelled.
	Delay func(ctx context.Context) error

	calls    int
	requests []dialog.Request
}

var _ dialog.Backend = (*Backend)(nil)

// Respond implements dialog.Backend.
func (b *Backend) Respond(ctx context.Context, req dialog.Request) (string, error) {
	b.mu.Lock()
	b.calls++
	b.requests = append(b.requests, req)
	idx := b.calls - 1
	err := b.Err
	delay := b.Delay
	b.mu.Unlock()

	if delay != nil {
		if derr := delay(ctx); derr != nil {
			return "", derr
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Replies) == 0 {
		return "", dialog.ErrEmptyReply
	}
	if idx >= len(b.Replies) {
		idx = len(b.Replies) - 1
	}
	return b.Replies[idx], nil
}

// Calls returns how many times Respond was invoked.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []dialog.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]dialog.Request, len(b.requests))
	copy(out, b.requests)
	return out
}

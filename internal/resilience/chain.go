package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orin-ai/orin/internal/dialog"
)

// ErrAllBackendsFailed is returned by [BackendChain.Respond] when every
// backend in the chain failed or had an open breaker.
var ErrAllBackendsFailed = errors.New("resilience: all dialog backends failed")

// chainEntry pairs a dialog backend with its dedicated circuit breaker.
type chainEntry struct {
	name    string
	backend dialog.Backend
	breaker *CircuitBreaker
}

// BackendChain is a dialog.Backend that tries a primary backend and then
// each registered fallback in order. Every entry has its own circuit
// breaker, so a backend that keeps failing is skipped outright until its
// reset timeout elapses.
//
// The chain is assembled before the conversation loop starts and is
// read-only afterwards, which makes it safe for concurrent use.
type BackendChain struct {
	entries []chainEntry
	cfg     BreakerConfig
}

var _ dialog.Backend = (*BackendChain)(nil)

// NewBackendChain creates a chain with primary as the first entry. cfg
// configures the per-entry breakers; the Name field is overwritten per
// entry.
func NewBackendChain(primaryName string, primary dialog.Backend, cfg BreakerConfig) *BackendChain {
	c := &BackendChain{cfg: cfg}
	c.add(primaryName, primary)
	return c
}

// AddFallback appends a fallback backend. Fallbacks are tried in the order
// they are added, after the primary.
func (c *BackendChain) AddFallback(name string, backend dialog.Backend) {
	c.add(name, backend)
}

func (c *BackendChain) add(name string, backend dialog.Backend) {
	cbCfg := c.cfg
	cbCfg.Name = name
	c.entries = append(c.entries, chainEntry{
		name:    name,
		backend: backend,
		breaker: NewCircuitBreaker(cbCfg),
	})
}

// Respond implements dialog.Backend. Entries with an open breaker are
// skipped; the first reply wins. When every entry fails the last error is
// wrapped in [ErrAllBackendsFailed].
func (c *BackendChain) Respond(ctx context.Context, req dialog.Request) (string, error) {
	var lastErr error
	for i := range c.entries {
		entry := &c.entries[i]

		var reply string
		err := entry.breaker.Execute(func() error {
			var innerErr error
			reply, innerErr = entry.backend.Respond(ctx, req)
			return innerErr
		})
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping dialog backend (circuit open)", "backend", entry.name)
		} else {
			slog.Warn("dialog backend failed, trying next", "backend", entry.name, "error", err)
		}

		// A cancelled context fails every remaining entry the same way;
		// stop early.
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}

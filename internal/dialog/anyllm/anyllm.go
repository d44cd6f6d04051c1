// Package anyllm provides a dialog backend built on
// github.com/mozilla-ai/any-llm-go, a unified multi-provider chat interface.
//
// Usage:
//
//	b, err := anyllm.New("anthropic", "claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-..."))
//	b, err := anyllm.New("ollama", "llama3.2")
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/orin-ai/orin/internal/dialog"
)

// Backend implements dialog.Backend by wrapping an any-llm-go provider.
type Backend struct {
	backend     anyllmlib.Provider
	model       string
	maxTokens   int
	temperature float64
}

var _ dialog.Backend = (*Backend)(nil)

// Option is a functional option for [New].
type Option func(*Backend)

// WithMaxTokens overrides the reply-length cap.
func WithMaxTokens(n int) Option {
	return func(b *Backend) { b.maxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(b *Backend) { b.temperature = t }
}

// New creates a Backend for the named provider and model.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile". libOpts are
// any-llm-go configuration options such as anyllmlib.WithAPIKey and
// anyllmlib.WithBaseURL; without an API key option the provider falls back
// to its environment variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, …).
func New(providerName, model string, libOpts []anyllmlib.Option, opts ...Option) (*Backend, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	provider, err := createProvider(providerName, libOpts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}

	b := &Backend{
		backend:     provider,
		model:       model,
		maxTokens:   dialog.DefaultMaxTokens,
		temperature: dialog.DefaultTemperature,
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// createProvider creates the underlying any-llm-go provider.
func createProvider(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// Respond implements dialog.Backend.
func (b *Backend) Respond(ctx context.Context, req dialog.Request) (string, error) {
	temperature := b.temperature
	maxTokens := b.maxTokens

	params := anyllmlib.CompletionParams{
		Model: b.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: req.System},
			{Role: anyllmlib.RoleUser, Content: req.UserText},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	resp, err := b.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.ContentString())
	if text == "" {
		return "", dialog.ErrEmptyReply
	}
	return text, nil
}

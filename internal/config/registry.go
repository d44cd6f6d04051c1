package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/orin-ai/orin/internal/dialog"
	"github.com/orin-ai/orin/internal/voice"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory
// has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	capture    map[string]func(ProviderEntry) (voice.Capture, error)
	recognizer map[string]func(ProviderEntry) (voice.Recognizer, error)
	speaker    map[string]func(ProviderEntry) (voice.Speaker, error)
	dialog     map[string]func(ProviderEntry) (dialog.Backend, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		capture:    make(map[string]func(ProviderEntry) (voice.Capture, error)),
		recognizer: make(map[string]func(ProviderEntry) (voice.Recognizer, error)),
		speaker:    make(map[string]func(ProviderEntry) (voice.Speaker, error)),
		dialog:     make(map[string]func(ProviderEntry) (dialog.Backend, error)),
	}
}

// RegisterCapture registers an audio capture factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterCapture(name string, factory func(ProviderEntry) (voice.Capture, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capture[name] = factory
}

// RegisterRecognizer registers a speech recognizer factory under name.
func (r *Registry) RegisterRecognizer(name string, factory func(ProviderEntry) (voice.Recognizer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizer[name] = factory
}

// RegisterSpeaker registers a speech synthesizer factory under name.
func (r *Registry) RegisterSpeaker(name string, factory func(ProviderEntry) (voice.Speaker, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speaker[name] = factory
}

// RegisterDialog registers a dialog backend factory under name.
func (r *Registry) RegisterDialog(name string, factory func(ProviderEntry) (dialog.Backend, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialog[name] = factory
}

// CreateCapture instantiates an audio capture using the factory registered
// under entry.Name. Returns [ErrProviderNotRegistered] if no factory has
// been registered for that name.
func (r *Registry) CreateCapture(entry ProviderEntry) (voice.Capture, error) {
	r.mu.RLock()
	factory, ok := r.capture[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: capture/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateRecognizer instantiates a speech recognizer using the factory
// registered under entry.Name.
func (r *Registry) CreateRecognizer(entry ProviderEntry) (voice.Recognizer, error) {
	r.mu.RLock()
	factory, ok := r.recognizer[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: recognizer/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateSpeaker instantiates a speech synthesizer using the factory
// registered under entry.Name.
func (r *Registry) CreateSpeaker(entry ProviderEntry) (voice.Speaker, error) {
	r.mu.RLock()
	factory, ok := r.speaker[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: speaker/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateDialog instantiates a dialog backend using the factory registered
// under entry.Name.
func (r *Registry) CreateDialog(entry ProviderEntry) (dialog.Backend, error) {
	r.mu.RLock()
	factory, ok := r.dialog[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: dialog/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

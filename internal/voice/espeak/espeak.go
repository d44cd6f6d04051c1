// Package espeak implements [voice.Speaker] by shelling out to the
// espeak-ng synthesizer. No CGo, no audio libraries; the binary must be on
// PATH (or supplied via [WithBinary]).
package espeak

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"github.com/orin-ai/orin/internal/voice"
)

const (
	defaultBinary  = "espeak-ng"
	defaultRateWPM = 175
	defaultVolume  = 0.85

	// espeak-ng amplitude range is 0–200; volume 1.0 maps to 200.
	maxAmplitude = 200
)

var _ voice.Speaker = (*Speaker)(nil)

// Option is a functional option for configuring a Speaker.
type Option func(*Speaker)

// WithBinary overrides the synthesizer binary, e.g. "espeak" on systems
// that ship the legacy build.
func WithBinary(path string) Option {
	return func(s *Speaker) {
		s.binary = path
	}
}

// WithVoice sets the espeak-ng voice identifier (e.g. "en-us", "de").
// When empty the synthesizer default applies.
func WithVoice(v string) Option {
	return func(s *Speaker) {
		s.voice = v
	}
}

// Speaker runs one synthesizer process per utterance. Speak blocks until
// the process exits, so overlapping calls serialize at the caller.
type Speaker struct {
	binary string
	voice  string

	mu      sync.Mutex
	rateWPM int
	volume  float64
}

// New creates a Speaker with default speech parameters.
func New(opts ...Option) *Speaker {
	s := &Speaker{
		binary:  defaultBinary,
		rateWPM: defaultRateWPM,
		volume:  defaultVolume,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configure implements voice.Speaker.
func (s *Speaker) Configure(rateWPM int, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rateWPM > 0 {
		s.rateWPM = rateWPM
	}
	if volume > 0 {
		s.volume = volume
	}
}

// Speak implements voice.Speaker. Synthesis failures are reported as
// service errors; a missing binary is a connectivity-class failure so the
// conversation loop falls back to printed output rather than going mute.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, s.binary, s.args(text)...)
	if err := cmd.Run(); err != nil {
		slog.Warn("speech synthesis failed", "binary", s.binary, "error", err)
		return &voice.ServiceError{
			Op:           "speak",
			Connectivity: true,
			Err:          fmt.Errorf("espeak: run %s: %w", s.binary, err),
		}
	}
	return nil
}

// args assembles the espeak-ng argument list for a single utterance.
func (s *Speaker) args(text string) []string {
	s.mu.Lock()
	rate, volume := s.rateWPM, s.volume
	s.mu.Unlock()

	amplitude := int(volume * maxAmplitude)
	if amplitude > maxAmplitude {
		amplitude = maxAmplitude
	}

	args := []string{
		"-s", strconv.Itoa(rate),
		"-a", strconv.Itoa(amplitude),
	}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	return append(args, text)
}

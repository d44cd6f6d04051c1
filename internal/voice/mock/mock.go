// Package mock provides scripted doubles for the voice interfaces, used in
// conversation engine tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/orin-ai/orin/internal/voice"
)

// Step is one scripted listen/recognize cycle.
type Step struct {
	// Text is the transcription Recognize returns for this step.
	Text string

	// ListenErr, when set, is returned by Listen instead of a clip.
	// Use voice.ErrNoSpeech to simulate an idle listen window.
	ListenErr error

	// RecognizeErr, when set, is returned by Recognize for this step's
	// clip.
	RecognizeErr error
}

// Voice implements [voice.Capture], [voice.Recognizer] and [voice.Speaker]
// from a fixed script. Once the script is exhausted, Listen returns
// [voice.ErrClosed] so the conversation loop winds down deterministically.
type Voice struct {
	mu      sync.Mutex
	steps   []Step
	next    int
	current Step

	spoken  []string
	rates   []int
	volumes []float64

	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error
}

var (
	_ voice.Capture    = (*Voice)(nil)
	_ voice.Recognizer = (*Voice)(nil)
	_ voice.Speaker    = (*Voice)(nil)
)

// New creates a scripted voice double.
func New(steps ...Step) *Voice {
	return &Voice{steps: steps}
}

// Listen implements voice.Capture. It consumes the next scripted step; the
// clip it returns is matched with the same step by the following Recognize
// call.
func (v *Voice) Listen(ctx context.Context, _, _ time.Duration) (voice.Clip, error) {
	if err := ctx.Err(); err != nil {
		return voice.Clip{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.next >= len(v.steps) {
		return voice.Clip{}, voice.ErrClosed
	}
	step := v.steps[v.next]
	v.next++

	if step.ListenErr != nil {
		return voice.Clip{}, step.ListenErr
	}
	v.current = step
	return voice.Clip{PCM: []byte(step.Text)}, nil
}

// Recognize implements voice.Recognizer against the step consumed by the
// preceding Listen call.
func (v *Voice) Recognize(_ context.Context, _ voice.Clip) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.current.RecognizeErr != nil {
		return "", v.current.RecognizeErr
	}
	if v.current.Text == "" {
		return "", voice.ErrUnrecognized
	}
	return v.current.Text, nil
}

// Configure implements voice.Speaker and records the parameters.
func (v *Voice) Configure(rateWPM int, volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rates = append(v.rates, rateWPM)
	v.volumes = append(v.volumes, volume)
}

// Speak implements voice.Speaker and records the utterance.
func (v *Voice) Speak(_ context.Context, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.SpeakErr != nil {
		return v.SpeakErr
	}
	v.spoken = append(v.spoken, text)
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (v *Voice) Spoken() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.spoken))
	copy(out, v.spoken)
	return out
}

// ConfiguredRates returns the rate of every Configure call in order.
func (v *Voice) ConfiguredRates() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, len(v.rates))
	copy(out, v.rates)
	return out
}

// Package voice defines the narrow interfaces between the conversation
// engine and its audio collaborators: capturing audio, turning it into
// text, and speaking replies.
//
// Implementations live in subpackages: console (line-oriented development
// transport), whisperhttp (whisper-server recognition client), espeak
// (process-based synthesis), and mock (scripted doubles for tests).
package voice

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by [Capture] and [Recognizer] implementations.
var (
	// ErrNoSpeech means the listen window elapsed without speech. Not a
	// failure; the conversation loop treats it as an idle cycle.
	ErrNoSpeech = errors.New("voice: no speech detected")

	// ErrUnrecognized means audio was captured but produced no usable
	// text. It feeds the consecutive-failure counter.
	ErrUnrecognized = errors.New("voice: speech not recognized")

	// ErrClosed means the input source is permanently gone (stdin EOF,
	// device unplugged). The conversation loop shuts down cleanly.
	ErrClosed = errors.New("voice: input source closed")
)

// ServiceError reports a failure of an external speech service.
type ServiceError struct {
	// Op names the failed operation ("recognize", "speak").
	Op string

	// Connectivity marks errors worth apologising to the user about:
	// network failures, quota exhaustion, server-side errors.
	Connectivity bool

	// Err is the underlying error.
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("voice: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Clip is a captured chunk of audio. Raw 16-bit signed little-endian PCM
// unless the capture implementation documents otherwise; the console
// transport carries the typed line directly.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Capture waits for a single utterance.
type Capture interface {
	// Listen blocks until speech is captured, timeout elapses
	// ([ErrNoSpeech]), or ctx is cancelled. phraseLimit caps the length
	// of a single utterance.
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Clip, error)
}

// Recognizer converts a captured clip into text.
type Recognizer interface {
	// Recognize returns the transcription of clip. An empty transcription
	// is reported as [ErrUnrecognized]; service failures as
	// [*ServiceError].
	Recognize(ctx context.Context, clip Clip) (string, error)
}

// Speaker voices a reply. Speak blocks until the utterance has been
// delivered so replies never overlap.
type Speaker interface {
	// Configure sets the speech rate (words per minute) and volume
	// ([0.0, 1.0]) derived from the active personality mode.
	Configure(rateWPM int, volume float64)

	Speak(ctx context.Context, text string) error
}

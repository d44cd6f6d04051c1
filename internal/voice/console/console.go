// Package console implements the voice interfaces over a line-oriented
// terminal: typed lines stand in for captured speech and replies are
// printed instead of synthesized. Useful on machines without audio
// hardware and for driving the assistant from scripts.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/orin-ai/orin/internal/voice"
)

// Console implements [voice.Capture], [voice.Recognizer] and
// [voice.Speaker] over an io.Reader / io.Writer pair.
type Console struct {
	name string
	out  io.Writer

	readOnce sync.Once
	lines    chan string
	readErr  error

	reader io.Reader

	mu      sync.Mutex
	rateWPM int
	volume  float64
}

var (
	_ voice.Capture    = (*Console)(nil)
	_ voice.Recognizer = (*Console)(nil)
	_ voice.Speaker    = (*Console)(nil)
)

// New creates a console transport. name labels spoken output, typically
// the assistant's name.
func New(name string, in io.Reader, out io.Writer) *Console {
	return &Console{
		name:   name,
		out:    out,
		reader: in,
		lines:  make(chan string),
	}
}

// startReader launches the single background goroutine that feeds typed
// lines into c.lines. Lazily started so a Console that is only used as a
// Speaker never reads.
func (c *Console) startReader() {
	c.readOnce.Do(func() {
		go func() {
			scanner := bufio.NewScanner(c.reader)
			for scanner.Scan() {
				c.lines <- scanner.Text()
			}
			c.readErr = scanner.Err()
			close(c.lines)
		}()
	})
}

// Listen implements voice.Capture. A typed line becomes the clip payload;
// an empty timeout window returns [voice.ErrNoSpeech] and a closed input
// stream returns [voice.ErrClosed]. phraseLimit has no meaning for typed
// input and is ignored.
func (c *Console) Listen(ctx context.Context, timeout, _ time.Duration) (voice.Clip, error) {
	c.startReader()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				return voice.Clip{}, fmt.Errorf("console: read input: %w", c.readErr)
			}
			return voice.Clip{}, voice.ErrClosed
		}
		return voice.Clip{PCM: []byte(line)}, nil
	case <-timer.C:
		return voice.Clip{}, voice.ErrNoSpeech
	case <-ctx.Done():
		return voice.Clip{}, ctx.Err()
	}
}

// Recognize implements voice.Recognizer. The clip payload is already text;
// a blank line counts as unrecognized speech.
func (c *Console) Recognize(_ context.Context, clip voice.Clip) (string, error) {
	text := strings.TrimSpace(string(clip.PCM))
	if text == "" {
		return "", voice.ErrUnrecognized
	}
	return text, nil
}

// Configure implements voice.Speaker. The parameters are retained so they
// show up in Params, but printed output is unaffected.
func (c *Console) Configure(rateWPM int, volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateWPM = rateWPM
	c.volume = volume
}

// Params returns the most recently configured speech parameters.
func (c *Console) Params() (rateWPM int, volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateWPM, c.volume
}

// Speak implements voice.Speaker by printing the reply prefixed with the
// assistant's name.
func (c *Console) Speak(_ context.Context, text string) error {
	if _, err := fmt.Fprintf(c.out, "%s: %s\n", c.name, text); err != nil {
		return &voice.ServiceError{Op: "speak", Err: err}
	}
	return nil
}

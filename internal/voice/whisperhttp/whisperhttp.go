// Package whisperhttp implements [voice.Recognizer] against a running
// whisper.cpp server binary (whisper-server), which exposes a REST API at
// POST /inference.
//
// Each captured clip is wrapped in a RIFF/WAV container and submitted as a
// single batch inference request. whisper.cpp is a batch engine, so there
// is no streaming; the conversation loop's utterance-at-a-time cadence
// fits it naturally.
//
// Usage:
//
//	r, err := whisperhttp.New("http://localhost:8080",
//	    whisperhttp.WithLanguage("en"),
//	)
//	text, err := r.Recognize(ctx, clip)
package whisperhttp

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/orin-ai/orin/internal/voice"
)

const (
	// bitsPerSample is fixed at 16 for the 16-bit signed little-endian PCM
	// audio that whisper.cpp expects.
	bitsPerSample = 16

	defaultLanguage   = "en"
	defaultSampleRate = 16000
	defaultTimeout    = 30 * time.Second
)

var _ voice.Recognizer = (*Recognizer)(nil)

// Option is a functional option for configuring a Recognizer.
type Option func(*Recognizer)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base.en", "small"). When empty the server uses whichever model
// it was started with — this is the default.
func WithModel(model string) Option {
	return func(r *Recognizer) {
		r.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp
// server (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) {
		r.language = lang
	}
}

// WithTimeout sets the HTTP client timeout for a single inference request.
// Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(r *Recognizer) {
		r.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Recognizer) {
		r.httpClient = c
	}
}

// Recognizer submits captured clips to a whisper.cpp HTTP server. Safe for
// concurrent use; all fields are set once in New.
type Recognizer struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a Recognizer that connects to the whisper.cpp HTTP server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Recognizer, error) {
	if serverURL == "" {
		return nil, errors.New("whisperhttp: serverURL must not be empty")
	}
	r := &Recognizer{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Recognize implements voice.Recognizer. Transport failures and 5xx
// responses are reported as connectivity errors so the conversation loop
// can apologise to the user; an empty transcription becomes
// [voice.ErrUnrecognized].
func (r *Recognizer) Recognize(ctx context.Context, clip voice.Clip) (string, error) {
	sr := clip.SampleRate
	if sr <= 0 {
		sr = defaultSampleRate
	}
	ch := clip.Channels
	if ch <= 0 {
		ch = 1
	}

	body, contentType, err := r.buildRequestBody(clip.PCM, sr, ch)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/inference", body)
	if err != nil {
		return "", fmt.Errorf("whisperhttp: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &voice.ServiceError{Op: "recognize", Connectivity: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		svcErr := fmt.Errorf("whisperhttp: server returned HTTP %d", resp.StatusCode)
		return "", &voice.ServiceError{
			Op:           "recognize",
			Connectivity: resp.StatusCode >= http.StatusInternalServerError,
			Err:          svcErr,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &voice.ServiceError{Op: "recognize", Connectivity: true, Err: err}
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisperhttp: parse JSON response: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", voice.ErrUnrecognized
	}
	return text, nil
}

// buildRequestBody wraps pcm in a WAV container and assembles the
// multipart form whisper-server expects.
func (r *Recognizer) buildRequestBody(pcm []byte, sampleRate, channels int) (*bytes.Buffer, string, error) {
	wav := encodeWAV(pcm, sampleRate, channels)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("whisperhttp: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return nil, "", fmt.Errorf("whisperhttp: write wav data: %w", err)
	}

	if r.language != "" {
		if err := mw.WriteField("language", r.language); err != nil {
			return nil, "", fmt.Errorf("whisperhttp: write language field: %w", err)
		}
	}
	if r.model != "" {
		if err := mw.WriteField("model", r.model); err != nil {
			return nil, "", fmt.Errorf("whisperhttp: write model field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("whisperhttp: close multipart writer: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

// encodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)      // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

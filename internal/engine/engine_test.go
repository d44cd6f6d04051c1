package engine

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/orin-ai/orin/internal/catalog"
	"github.com/orin-ai/orin/internal/dialog"
	dialogmock "github.com/orin-ai/orin/internal/dialog/mock"
	"github.com/orin-ai/orin/internal/personality"
	"github.com/orin-ai/orin/internal/session"
	"github.com/orin-ai/orin/internal/voice"
	voicemock "github.com/orin-ai/orin/internal/voice/mock"
	"github.com/orin-ai/orin/internal/wake"
)

// testHarness bundles an engine with its observable collaborators.
type testHarness struct {
	engine  *Engine
	voice   *voicemock.Voice
	session *session.Session
	status  *bytes.Buffer
}

func newTestHarness(t *testing.T, cfg Config, backend dialog.Backend, steps ...voicemock.Step) *testHarness {
	t.Helper()

	if cfg.AssistantName == "" {
		cfg.AssistantName = "orin"
	}
	cfg.RecoveryPause = time.Millisecond

	sess := session.New("Alex")
	v := voicemock.New(steps...)
	status := &bytes.Buffer{}
	phrases := wake.Phrases(cfg.AssistantName)

	eng, err := New(cfg, Deps{
		Session:    sess,
		Wake:       wake.NewJaccard(phrases),
		WakeWords:  phrases,
		Catalog:    catalog.New(cfg.AssistantName, sess.History(), catalog.NopActions{}),
		Fallback:   catalog.NewResponder(cfg.AssistantName, rand.New(rand.NewSource(7))),
		Backend:    backend,
		Rewriter:   personality.NewRewriter(rand.New(rand.NewSource(7))),
		Capture:    v,
		Recognizer: v,
		Speaker:    v,
	},
		WithStatusWriter(status),
		WithRand(rand.New(rand.NewSource(7))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testHarness{engine: eng, voice: v, session: sess, status: status}
}

func TestNew_MissingDeps(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, Deps{})
	if err == nil {
		t.Fatal("expected error for empty deps")
	}
}

func TestRun_GreetsAndMentionsWakeWord(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{FallbackOnly: true}, nil)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := h.voice.Spoken()
	if len(spoken) < 2 {
		t.Fatalf("spoken = %v, want greeting and instruction", spoken)
	}
	if !strings.Contains(spoken[0], "Hello! I'm Orin") {
		t.Errorf("greeting = %q", spoken[0])
	}
	if !strings.Contains(spoken[0], "OpenAI API key") {
		t.Error("fallback-only greeting should mention enabling a backend")
	}
	if !strings.Contains(spoken[1], "Just say 'orin'") {
		t.Errorf("instruction = %q", spoken[1])
	}
}

func TestRun_AsleepIgnoresNonWakeSpeech(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "what time is it"},
		voicemock.Step{Text: "tell me a story"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Greeting, instruction, farewell — nothing in between.
	spoken := h.voice.Spoken()
	if len(spoken) != 3 {
		t.Fatalf("spoken = %v, want exactly greeting + instruction + farewell", spoken)
	}
	if h.session.History().Len() != 0 {
		t.Error("sleeping speech must not enter the history")
	}
}

func TestRun_WakeWordWakesWithAck(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "hey orin"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := h.voice.Spoken()
	if len(spoken) != 4 {
		t.Fatalf("spoken = %v, want greeting, instruction, ack, farewell", spoken)
	}
	ack := spoken[2]
	found := false
	for _, a := range wakeAcks {
		if ack == a {
			found = true
		}
	}
	if !found {
		t.Errorf("ack = %q, not a known wake acknowledgement", ack)
	}
	if !strings.Contains(h.status.String(), "awake and ready") {
		t.Error("status writer should note the wake transition")
	}
}

func TestRun_FuzzyWakeWordMatches(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "orrin are you there"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := h.session.State(); got != session.StateAwake {
		t.Errorf("state = %v, want awake after fuzzy match", got)
	}
}

func TestRun_ExitSpeaksFarewellExactlyOnce(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "hey orin"},
		voicemock.Step{Text: "goodbye orin"},
		voicemock.Step{Text: "this should never be heard"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := h.voice.Spoken()
	var exits, farewells int
	for _, s := range spoken {
		if strings.Contains(s, "It was great talking with you today") {
			exits++
		}
		if strings.Contains(s, "Thanks for talking with me today!") {
			farewells++
		}
	}
	if exits != 1 {
		t.Errorf("exit reply spoken %d times, want 1", exits)
	}
	if farewells != 1 {
		t.Errorf("farewell spoken %d times, want 1", farewells)
	}
	if got := h.session.State(); got != session.StateTerminated {
		t.Errorf("state = %v, want terminated", got)
	}

	// The farewell carries a session summary because an exchange happened.
	last := spoken[len(spoken)-1]
	if !strings.Contains(last, "had 1 exchanges") {
		t.Errorf("farewell = %q, want exchange summary", last)
	}
}

func TestRun_BackendReplyPreferred(t *testing.T) {
	t.Parallel()

	backend := &dialogmock.Backend{Replies: []string{"The answer is 42."}}
	h := newTestHarness(t, Config{}, backend,
		voicemock.Step{Text: "hey orin"},
		voicemock.Step{Text: "what is the meaning of life"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "The answer is 42.") {
		t.Errorf("spoken = %q, want backend reply", spoken)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("backend requests = %d, want 1", len(reqs))
	}
	if !strings.Contains(reqs[0].System, "Your name is orin") {
		t.Errorf("system prompt = %q, want assistant name", reqs[0].System)
	}
}

func TestRun_BackendFailureFallsBackSameCycle(t *testing.T) {
	t.Parallel()

	backend := &dialogmock.Backend{Err: errors.New("backend down")}
	h := newTestHarness(t, Config{}, backend,
		voicemock.Step{Text: "hey orin"},
		voicemock.Step{Text: "what time is it"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "It's currently") {
		t.Errorf("spoken = %q, want built-in time reply despite backend failure", spoken)
	}
	if strings.Contains(spoken, "backend down") {
		t.Error("raw backend errors must never be spoken")
	}
}

func TestRun_UnknownCommandGetsFallbackReply(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{FallbackOnly: true}, nil,
		voicemock.Step{Text: "hey orin"},
		voicemock.Step{Text: "zzz gibberish xyzzy"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Every command cycle must yield a non-empty spoken reply.
	spoken := h.voice.Spoken()
	if len(spoken) != 5 { // greeting, instruction, ack, reply, farewell
		t.Fatalf("spoken = %v, want 5 utterances", spoken)
	}
	if spoken[3] == "" {
		t.Error("fallback reply must not be empty")
	}
	if h.session.History().Len() != 1 {
		t.Errorf("history len = %d, want 1", h.session.History().Len())
	}
}

func TestRun_ChangePersonalityConfiguresSpeaker(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "hey orin"},
		voicemock.Step{Text: "change personality to mafia"},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := h.session.Mode(); got != personality.ModeMafia {
		t.Errorf("mode = %v, want mafia", got)
	}
	if pref, ok := h.session.Preference("personality"); !ok || pref != "mafia" {
		t.Errorf("personality preference = %q (%v), want mafia", pref, ok)
	}
	rates := h.voice.ConfiguredRates()
	if len(rates) == 0 || rates[len(rates)-1] != 140 {
		t.Errorf("configured rates = %v, want mafia rate 140", rates)
	}
	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "Personality changed to Mafia mode.") {
		t.Errorf("spoken = %q, want mode confirmation", spoken)
	}
}

func TestRun_MissCounterHintsEveryThird(t *testing.T) {
	t.Parallel()

	unrec := voicemock.Step{Text: "noise", RecognizeErr: voice.ErrUnrecognized}
	h := newTestHarness(t, Config{}, nil, unrec, unrec, unrec, unrec, unrec, unrec)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	hints := strings.Count(h.status.String(), "I didn't catch that.")
	if hints != 2 {
		t.Errorf("clarity hints = %d, want 2 (every third miss)", hints)
	}

	// The hint is printed, never spoken.
	for _, s := range h.voice.Spoken() {
		if strings.Contains(s, "I didn't catch that") {
			t.Error("clarity hint must not be spoken")
		}
	}
}

func TestRun_ConnectivityErrorIsSpoken(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil,
		voicemock.Step{Text: "x", RecognizeErr: &voice.ServiceError{
			Op:           "recognize",
			Connectivity: true,
			Err:          errors.New("quota exceeded"),
		}},
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "trouble with speech recognition") {
		t.Errorf("spoken = %q, want connectivity apology", spoken)
	}
}

func TestRun_InactivityReminders(t *testing.T) {
	t.Parallel()

	silent := voicemock.Step{ListenErr: voice.ErrNoSpeech}
	h := newTestHarness(t, Config{Inactivity: time.Nanosecond}, nil,
		silent, silent, silent,
		// Unbroken silence after the quiet notice must stay silent.
		silent, silent, silent, silent,
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := h.voice.Spoken()
	var reminders, quiet int
	for _, s := range spoken {
		if strings.Contains(s, "I'm still here if you need me!") {
			reminders++
		}
		if strings.Contains(s, "I'll be quiet now") {
			quiet++
		}
	}
	if reminders != 2 {
		t.Errorf("reminders = %d, want 2", reminders)
	}
	if quiet != 1 {
		t.Errorf("quiet notices = %d, want exactly 1 regardless of further silence", quiet)
	}
}

func TestRun_SpeechAfterQuietNoticeReenablesReminders(t *testing.T) {
	t.Parallel()

	silent := voicemock.Step{ListenErr: voice.ErrNoSpeech}
	h := newTestHarness(t, Config{Inactivity: time.Nanosecond}, nil,
		silent, silent, silent, // two reminders + quiet notice
		voicemock.Step{Text: "hey orin"}, // non-empty input lifts the latch
		silent, silent, silent, // a fresh reminder cycle
	)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var reminders, quiet int
	for _, s := range h.voice.Spoken() {
		if strings.Contains(s, "I'm still here if you need me!") {
			reminders++
		}
		if strings.Contains(s, "I'll be quiet now") {
			quiet++
		}
	}
	if reminders != 4 {
		t.Errorf("reminders = %d, want 2 before and 2 after the wake", reminders)
	}
	if quiet != 2 {
		t.Errorf("quiet notices = %d, want one per completed reminder cycle", quiet)
	}
}

func TestRun_ContextCancelStillSaysFarewell(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newTestHarness(t, Config{}, nil)
	if err := h.engine.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "Thanks for talking with me today!") {
		t.Errorf("spoken = %q, want farewell on cancellation", spoken)
	}
}

func TestRun_CaptureFailureStillSaysFarewell(t *testing.T) {
	t.Parallel()

	deviceErr := errors.New("device unplugged")
	h := newTestHarness(t, Config{}, nil, voicemock.Step{ListenErr: deviceErr})

	err := h.engine.Run(context.Background())
	if !errors.Is(err, deviceErr) {
		t.Fatalf("err = %v, want the capture failure surfaced", err)
	}

	spoken := strings.Join(h.voice.Spoken(), "\n")
	if !strings.Contains(spoken, "Thanks for talking with me today!") {
		t.Errorf("spoken = %q, want farewell before the error return", spoken)
	}
}

func TestAutoSleep_ReturnsToAsleep(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, Config{}, nil)
	h.session.Wake()

	h.engine.autoSleep()

	if got := h.session.State(); got != session.StateAsleep {
		t.Errorf("state = %v, want asleep", got)
	}
	if !strings.Contains(h.status.String(), "Going into sleep mode...") {
		t.Error("status writer should note the sleep transition")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "0:00:42"},
		{5*time.Minute + 3*time.Second, "0:05:03"},
		{time.Hour + 2*time.Minute + 500*time.Millisecond, "1:02:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	if got := titleCase("orin the helper"); got != "Orin The Helper" {
		t.Errorf("titleCase = %q", got)
	}
}

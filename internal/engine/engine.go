// Package engine runs the spoken conversation loop: listen, recognize,
// dispatch, speak. It owns the wake/sleep lifecycle of a [session.Session]
// and arbitrates between the generative dialog backend and the built-in
// response catalog.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/orin-ai/orin/internal/catalog"
	"github.com/orin-ai/orin/internal/dialog"
	"github.com/orin-ai/orin/internal/observe"
	"github.com/orin-ai/orin/internal/personality"
	"github.com/orin-ai/orin/internal/session"
	"github.com/orin-ai/orin/internal/voice"
	"github.com/orin-ai/orin/internal/wake"
)

const (
	defaultAsleepListen   = 1 * time.Second
	defaultAwakeListen    = 5 * time.Second
	defaultActiveListen   = 8 * time.Second
	defaultActiveWindow   = 10 * time.Second
	defaultPhraseLimit    = 5 * time.Second
	defaultSleepFresh     = 30 * time.Second
	defaultSleepEngaged   = 45 * time.Second
	defaultInactivity     = 5 * time.Minute
	defaultMaxReminders   = 2
	defaultRecoveryPause  = 1 * time.Second
	defaultContextTurns   = 5
	farewellSpeakDeadline = 10 * time.Second
)

// exitWords end the session when any of them appears in a command.
var exitWords = []string{"goodbye", "bye", "exit", "quit", "stop", "shut down"}

// wakeAcks are spoken when the wake word pulls the assistant out of sleep.
var wakeAcks = []string{
	"Yes, how can I help you?",
	"I'm listening! What can I do for you?",
	"Hi there! What would you like to know?",
	"Yes? I'm here to help!",
}

// Config tunes the conversation loop. Zero-value fields fall back to
// defaults matching a hands-free assistant cadence.
type Config struct {
	// AssistantName is the assistant's spoken name.
	AssistantName string

	// AsleepListen is the listen window while asleep; kept short so wake
	// word checks stay responsive.
	AsleepListen time.Duration

	// AwakeListen is the listen window while awake.
	AwakeListen time.Duration

	// ActiveListen replaces AwakeListen while a conversation is in full
	// swing, i.e. the previous command arrived less than ActiveWindow ago.
	ActiveListen time.Duration
	ActiveWindow time.Duration

	// PhraseLimit caps the length of a single utterance.
	PhraseLimit time.Duration

	// SleepFresh and SleepEngaged are the quiet periods before the
	// assistant returns to sleep, for empty and non-empty conversation
	// history respectively.
	SleepFresh   time.Duration
	SleepEngaged time.Duration

	// Inactivity is how long total silence lasts before a spoken
	// reminder; MaxReminders caps consecutive reminders before the
	// assistant announces it will stay quiet.
	Inactivity   time.Duration
	MaxReminders int

	// BackendTimeout bounds a single generative backend request.
	BackendTimeout time.Duration

	// RecoveryPause is the cooldown after a recovered cycle panic.
	RecoveryPause time.Duration

	// FallbackOnly marks a run without a generative backend; the greeting
	// mentions how to enable one.
	FallbackOnly bool
}

func (c *Config) applyDefaults() {
	if c.AsleepListen <= 0 {
		c.AsleepListen = defaultAsleepListen
	}
	if c.AwakeListen <= 0 {
		c.AwakeListen = defaultAwakeListen
	}
	if c.ActiveListen <= 0 {
		c.ActiveListen = defaultActiveListen
	}
	if c.ActiveWindow <= 0 {
		c.ActiveWindow = defaultActiveWindow
	}
	if c.PhraseLimit <= 0 {
		c.PhraseLimit = defaultPhraseLimit
	}
	if c.SleepFresh <= 0 {
		c.SleepFresh = defaultSleepFresh
	}
	if c.SleepEngaged <= 0 {
		c.SleepEngaged = defaultSleepEngaged
	}
	if c.Inactivity <= 0 {
		c.Inactivity = defaultInactivity
	}
	if c.MaxReminders <= 0 {
		c.MaxReminders = defaultMaxReminders
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = dialog.DefaultTimeout
	}
	if c.RecoveryPause <= 0 {
		c.RecoveryPause = defaultRecoveryPause
	}
}

// Deps are the collaborators the engine drives. Backend and Metrics are
// optional; everything else is required.
type Deps struct {
	Session    *session.Session
	Wake       wake.Detector
	WakeWords  []string
	Catalog    *catalog.Catalog
	Fallback   *catalog.Responder
	Backend    dialog.Backend
	Rewriter   *personality.Rewriter
	Capture    voice.Capture
	Recognizer voice.Recognizer
	Speaker    voice.Speaker
	Metrics    *observe.Metrics
}

func (d *Deps) validate() error {
	var errs []error
	if d.Session == nil {
		errs = append(errs, errors.New("Session is required"))
	}
	if d.Wake == nil {
		errs = append(errs, errors.New("Wake detector is required"))
	}
	if len(d.WakeWords) == 0 {
		errs = append(errs, errors.New("WakeWords must not be empty"))
	}
	if d.Catalog == nil {
		errs = append(errs, errors.New("Catalog is required"))
	}
	if d.Fallback == nil {
		errs = append(errs, errors.New("Fallback responder is required"))
	}
	if d.Rewriter == nil {
		errs = append(errs, errors.New("Rewriter is required"))
	}
	if d.Capture == nil {
		errs = append(errs, errors.New("Capture is required"))
	}
	if d.Recognizer == nil {
		errs = append(errs, errors.New("Recognizer is required"))
	}
	if d.Speaker == nil {
		errs = append(errs, errors.New("Speaker is required"))
	}
	return errors.Join(errs...)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithStatusWriter redirects operator-facing status lines (hints that are
// printed, never spoken). Defaults to os.Stdout.
func WithStatusWriter(w io.Writer) Option {
	return func(e *Engine) {
		e.status = w
	}
}

// WithRand injects a deterministic random source for tests.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine is the conversation loop. Run drives it; one Run call per Engine.
type Engine struct {
	cfg  Config
	deps Deps

	status io.Writer
	rng    *rand.Rand
	now    func() time.Time

	sleepTimer *SleepTimer

	// speakMu serializes utterances so replies never overlap.
	speakMu sync.Mutex

	farewellOnce sync.Once

	// loop-local state, touched only by the Run goroutine
	lastActivity time.Time
	reminders    int
	quiet        bool
}

// New validates deps and assembles an engine.
func New(cfg Config, deps Deps, opts ...Option) (*Engine, error) {
	cfg.applyDefaults()
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if deps.Metrics == nil {
		deps.Metrics = observe.DefaultMetrics()
	}

	e := &Engine{
		cfg:    cfg,
		deps:   deps,
		status: os.Stdout,
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.sleepTimer = NewSleepTimer(e.autoSleep)
	return e, nil
}

// Run executes the conversation loop until the user says goodbye, the
// input source closes, ctx is cancelled, or audio capture fails hard. The
// farewell is spoken exactly once on any of those paths.
func (e *Engine) Run(ctx context.Context) error {
	defer e.sleepTimer.Stop()

	e.greet(ctx)
	e.lastActivity = e.now()

	for {
		if ctx.Err() != nil {
			e.farewell()
			return nil
		}
		if e.deps.Session.State() == session.StateTerminated {
			e.farewell()
			return nil
		}

		err := e.runCycle(ctx)
		if errors.Is(err, voice.ErrClosed) {
			e.farewell()
			return nil
		}
		if err != nil && ctx.Err() == nil {
			e.farewell()
			return fmt.Errorf("engine: capture: %w", err)
		}
	}
}

// greet speaks the opening lines, including the wake word instruction.
func (e *Engine) greet(ctx context.Context) {
	greeting := fmt.Sprintf(
		"Hello! I'm %s, your advanced AI voice assistant. I'm ready to help with questions, tasks, and natural conversation!",
		titleCase(e.cfg.AssistantName),
	)
	if e.cfg.FallbackOnly {
		greeting += " For even smarter responses, consider adding an OpenAI API key."
	}
	e.say(ctx, greeting)
	e.say(ctx, fmt.Sprintf("Just say '%s' followed by your question or command to get started.", e.deps.WakeWords[0]))
}

// runCycle performs one listen/recognize/dispatch pass. Panics inside a
// cycle are contained so a bad reply never kills the assistant.
func (e *Engine) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("conversation cycle panic", "panic", r)
			e.say(ctx, "I encountered a small glitch, but I'm still here to help!")
			time.Sleep(e.cfg.RecoveryPause)
		}
	}()

	clip, err := e.deps.Capture.Listen(ctx, e.listenTimeout(), e.cfg.PhraseLimit)
	if err != nil {
		switch {
		case errors.Is(err, voice.ErrNoSpeech):
			e.handleIdle(ctx)
			return nil
		case errors.Is(err, voice.ErrClosed):
			return err
		case ctx.Err() != nil:
			return nil
		default:
			slog.Error("audio capture failed", "error", err)
			return err
		}
	}

	text, err := e.deps.Recognizer.Recognize(ctx, clip)
	if err != nil {
		e.handleRecognitionError(ctx, err)
		return nil
	}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	e.deps.Session.ResetMisses()
	e.markActivity()

	if e.deps.Session.State() == session.StateAsleep {
		e.handleAsleep(ctx, text)
		return nil
	}

	e.deps.Session.MarkCommand()
	e.deps.Metrics.RecordCycle(ctx, "command")
	e.handleCommand(ctx, text)
	return nil
}

// listenTimeout picks the capture window for the current state: short
// while asleep, generous while awake, longest mid-conversation.
func (e *Engine) listenTimeout() time.Duration {
	if e.deps.Session.State() != session.StateAwake {
		return e.cfg.AsleepListen
	}
	if last := e.deps.Session.LastCommand(); !last.IsZero() && e.now().Sub(last) < e.cfg.ActiveWindow {
		return e.cfg.ActiveListen
	}
	return e.cfg.AwakeListen
}

// handleIdle speaks periodic reminders during prolonged silence. After
// MaxReminders of them it announces quiet and latches idle speech off;
// only the next non-empty input (markActivity) re-enables it.
func (e *Engine) handleIdle(ctx context.Context) {
	e.deps.Metrics.RecordCycle(ctx, "idle")
	if e.quiet {
		return
	}
	if e.now().Sub(e.lastActivity) <= e.cfg.Inactivity {
		return
	}
	if e.reminders < e.cfg.MaxReminders {
		e.say(ctx, "I'm still here if you need me! Just say my name.")
		e.reminders++
		e.lastActivity = e.now()
		return
	}
	e.say(ctx, "I'll be quiet now, but I'm always listening for my wake word.")
	e.quiet = true
}

// handleRecognitionError counts misses and surfaces service trouble. The
// clarity hint is printed rather than spoken so the assistant does not
// talk over someone it failed to understand.
func (e *Engine) handleRecognitionError(ctx context.Context, err error) {
	e.deps.Metrics.RecordRecognitionFailure(ctx)

	var svcErr *voice.ServiceError
	if errors.As(err, &svcErr) && svcErr.Connectivity {
		slog.Error("speech recognition unavailable", "error", err)
		e.say(ctx, "I'm having trouble with speech recognition. Please check your internet connection.")
		return
	}
	if errors.Is(err, voice.ErrUnrecognized) {
		if misses := e.deps.Session.RecordMiss(); misses%3 == 0 {
			fmt.Fprintln(e.status, "I didn't catch that. Try speaking a bit clearer or closer to the microphone.")
		}
		return
	}
	slog.Error("speech recognition failed", "error", err)
}

// handleAsleep checks sleeping input for the wake word; everything else is
// dropped without a trace.
func (e *Engine) handleAsleep(ctx context.Context, text string) {
	if !e.deps.Wake.Match(text) {
		return
	}
	if !e.deps.Session.Wake() {
		return
	}
	e.deps.Metrics.RecordWake(ctx)
	e.say(ctx, wakeAcks[e.rng.Intn(len(wakeAcks))])
	fmt.Fprintln(e.status, "Assistant is awake and ready for conversation...")
	e.resetSleepTimer()
}

// handleCommand dispatches one awake-state command: exit, personality
// change, generative backend, built-in catalog, smart fallback, in that
// order.
func (e *Engine) handleCommand(ctx context.Context, text string) {
	cmd := wake.StripPrefix(text, e.deps.WakeWords)

	if containsAny(cmd, exitWords) {
		reply := "Goodbye! It was great talking with you today. Take care!"
		e.deps.Session.History().Append(cmd, reply)
		e.say(ctx, reply)
		e.deps.Session.Terminate()
		return
	}

	if strings.Contains(cmd, "change personality") || strings.Contains(cmd, "change mode") {
		e.changePersonality(ctx, cmd)
		return
	}

	if e.deps.Backend != nil {
		if reply, ok := e.askBackend(ctx, cmd); ok {
			e.finishTurn(ctx, cmd, reply)
			return
		}
	}

	if reply, ok := e.deps.Catalog.Respond(cmd); ok {
		e.finishTurn(ctx, cmd, reply)
		return
	}

	e.finishTurn(ctx, cmd, e.deps.Fallback.Respond(cmd))
}

// changePersonality switches the active mode and retunes speech output.
func (e *Engine) changePersonality(ctx context.Context, cmd string) {
	var (
		mode  personality.Mode
		reply string
	)
	switch {
	case strings.Contains(cmd, "mafia"):
		mode, reply = personality.ModeMafia, "Personality changed to Mafia mode."
	case strings.Contains(cmd, "gangster"), strings.Contains(cmd, "humor"):
		mode, reply = personality.ModeGangster, "Personality changed to Gangster mode."
	case strings.Contains(cmd, "professional"):
		mode, reply = personality.ModeProfessional, "Personality changed to Professional mode."
	default:
		mode, reply = personality.ModeFriendly, "Back to friendly mode."
	}

	e.deps.Session.SetMode(mode)
	e.deps.Session.SetPreference("personality", string(mode))
	params := mode.Speech()
	e.deps.Speaker.Configure(params.RateWPM, params.Volume)
	slog.Info("personality changed", "mode", string(mode))

	e.finishTurn(ctx, cmd, reply)
}

// askBackend asks the generative backend for a reply. Failures are logged
// and reported as not-ok so the caller falls through to the catalog; the
// user never hears a raw backend error.
func (e *Engine) askBackend(ctx context.Context, cmd string) (string, bool) {
	bctx, cancel := context.WithTimeout(ctx, e.cfg.BackendTimeout)
	defer cancel()

	req := dialog.Request{
		System: dialog.SystemPrompt(
			e.cfg.AssistantName,
			e.deps.Session.Mode().Tone(),
			e.deps.Session.History().Context(defaultContextTurns),
		),
		UserText: cmd,
	}

	start := e.now()
	reply, err := e.deps.Backend.Respond(bctx, req)
	e.deps.Metrics.RecordBackendRequest(ctx, time.Since(start), err)
	if err != nil {
		slog.Warn("dialog backend failed, using built-in responses", "error", err)
		return "", false
	}
	if reply == "" {
		return "", false
	}
	return reply, true
}

// finishTurn speaks the reply, records the exchange, and rearms the sleep
// timer.
func (e *Engine) finishTurn(ctx context.Context, cmd, reply string) {
	e.say(ctx, reply)
	e.deps.Session.History().Append(cmd, reply)
	e.resetSleepTimer()
}

// resetSleepTimer rearms auto-sleep: an engaged conversation gets a longer
// grace period than a fresh one.
func (e *Engine) resetSleepTimer() {
	d := e.cfg.SleepFresh
	if e.deps.Session.History().Len() > 0 {
		d = e.cfg.SleepEngaged
	}
	e.sleepTimer.Reset(d)
}

// autoSleep is the sleep timer callback.
func (e *Engine) autoSleep() {
	if e.deps.Session.Sleep() {
		slog.Info("assistant returning to sleep")
		fmt.Fprintln(e.status, "Going into sleep mode...")
	}
}

// say voices text through the configured speaker after applying the active
// personality transform. Synthesis failures degrade to a printed line so
// the reply is never lost.
func (e *Engine) say(ctx context.Context, text string) {
	transformed := e.deps.Rewriter.Apply(e.deps.Session.Mode(), text)

	e.speakMu.Lock()
	defer e.speakMu.Unlock()

	start := e.now()
	err := e.deps.Speaker.Speak(ctx, transformed)
	e.deps.Metrics.RecordSpeak(ctx, time.Since(start))
	if err != nil {
		slog.Warn("speech synthesis failed, printing instead", "error", err)
		fmt.Fprintf(e.status, "%s: %s\n", titleCase(e.cfg.AssistantName), transformed)
	}
}

// farewell speaks the closing line with a session summary. Reachable from
// multiple shutdown paths; only the first wins.
func (e *Engine) farewell() {
	e.farewellOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), farewellSpeakDeadline)
		defer cancel()

		summary := ""
		if n := e.deps.Session.History().Len(); n > 0 {
			summary = fmt.Sprintf("We chatted for %s and had %d exchanges. ",
				formatDuration(e.deps.Session.Duration()), n)
		}
		e.say(ctx, fmt.Sprintf("Thanks for talking with me today! %sGoodbye!", summary))
	})
}

// formatDuration renders d as H:MM:SS with sub-second precision dropped.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// markActivity notes user speech for the inactivity reminder logic and
// lifts the post-notice quiet latch.
func (e *Engine) markActivity() {
	e.lastActivity = e.now()
	e.reminders = 0
	e.quiet = false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if prev == ' ' {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, s)
}

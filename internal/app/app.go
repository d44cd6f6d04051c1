// Package app wires the Orin subsystems into a running assistant.
//
// The App struct owns the full lifecycle: New creates and connects the
// session, wake detection, response catalog, and conversation engine; Run
// executes the conversation loop alongside the observability server; and
// Shutdown tears everything down in order.
//
// For testing, inject mock providers via the Providers struct and forward
// engine options (deterministic randomness, status capture) through
// WithEngineOptions.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/orin-ai/orin/internal/catalog"
	"github.com/orin-ai/orin/internal/config"
	"github.com/orin-ai/orin/internal/dialog"
	"github.com/orin-ai/orin/internal/engine"
	"github.com/orin-ai/orin/internal/observe"
	"github.com/orin-ai/orin/internal/personality"
	"github.com/orin-ai/orin/internal/session"
	"github.com/orin-ai/orin/internal/voice"
	"github.com/orin-ai/orin/internal/wake"
)

const (
	defaultAssistantName = "orin"
	defaultUserName      = "User"
)

// Providers holds one interface value per provider slot. Capture,
// Recognizer, and Speaker are required. Dialog may be nil, in which case
// the assistant runs on its deterministic response catalog alone.
// Populated by main.go via the config registry.
type Providers struct {
	Capture    voice.Capture
	Recognizer voice.Recognizer
	Speaker    voice.Speaker
	Dialog     dialog.Backend
}

func (p *Providers) validate() error {
	var errs []error
	if p.Capture == nil {
		errs = append(errs, errors.New("Capture provider is required"))
	}
	if p.Recognizer == nil {
		errs = append(errs, errors.New("Recognizer provider is required"))
	}
	if p.Speaker == nil {
		errs = append(errs, errors.New("Speaker provider is required"))
	}
	return errors.Join(errs...)
}

// App owns all subsystem lifetimes: the session, the conversation engine,
// the optional observability server, and the optional config watcher. One
// Run call per App.
type App struct {
	cfg       *config.Config
	providers Providers

	sess   *session.Session
	engine *engine.Engine
	obs    *observe.Server

	logLevel   *slog.LevelVar
	watchPath  string
	watcher    *config.Watcher
	engineOpts []engine.Option

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles
// and to connect the app to process-level facilities.
type Option func(*App)

// WithLogLevelVar hands the App the level var backing the process logger,
// so a config reload can adjust verbosity without a restart.
func WithLogLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.logLevel = lv }
}

// WithConfigWatcher enables hot reload of the config file at path. Changes
// to hot-reloadable fields (log level, personality) are applied in place;
// anything else logs a restart hint.
func WithConfigWatcher(path string) Option {
	return func(a *App) { a.watchPath = path }
}

// WithEngineOptions forwards options to the conversation engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(a *App) { a.engineOpts = append(a.engineOpts, opts...) }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. The providers
// struct comes from main.go (populated via the config registry). Missing
// assistant settings fall back to defaults: name "orin", user "User",
// Jaccard wake matching, and the friendly personality.
func New(cfg *config.Config, providers Providers, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: cfg must not be nil")
	}
	if err := providers.validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	name := cfg.Assistant.Name
	if name == "" {
		name = defaultAssistantName
	}
	userName := cfg.Assistant.UserName
	if userName == "" {
		userName = defaultUserName
	}

	// ── 1. Session + personality ─────────────────────────────────────────
	mode, ok := personality.ParseMode(cfg.Assistant.Personality)
	if !ok {
		mode = personality.ModeFriendly
	}
	a.sess = session.New(userName)
	a.sess.SetMode(mode)
	speech := mode.Speech()
	providers.Speaker.Configure(speech.RateWPM, speech.Volume)

	// ── 2. Wake detection ────────────────────────────────────────────────
	phrases := wake.Phrases(strings.ToLower(name))
	var detector wake.Detector
	switch cfg.Assistant.WakeMatch {
	case config.WakeMatchPhonetic:
		detector = wake.NewPhonetic(phrases)
	default:
		detector = wake.NewJaccard(phrases)
	}

	// ── 3. Conversation engine ───────────────────────────────────────────
	eng, err := engine.New(
		engine.Config{
			AssistantName:  name,
			AsleepListen:   cfg.Timers.AsleepListen.Std(),
			AwakeListen:    cfg.Timers.AwakeListen.Std(),
			ActiveListen:   cfg.Timers.ActiveListen.Std(),
			PhraseLimit:    cfg.Timers.PhraseLimit.Std(),
			SleepFresh:     cfg.Timers.SleepFresh.Std(),
			SleepEngaged:   cfg.Timers.SleepEngaged.Std(),
			Inactivity:     cfg.Timers.Inactivity.Std(),
			BackendTimeout: cfg.Timers.BackendTimeout.Std(),
			FallbackOnly:   providers.Dialog == nil,
		},
		engine.Deps{
			Session:    a.sess,
			Wake:       detector,
			WakeWords:  phrases,
			Catalog:    catalog.New(name, a.sess.History(), catalog.ExecActions{}),
			Fallback:   catalog.NewResponder(name, nil),
			Backend:    providers.Dialog,
			Rewriter:   personality.NewRewriter(nil),
			Capture:    providers.Capture,
			Recognizer: providers.Recognizer,
			Speaker:    providers.Speaker,
		},
		a.engineOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("app: assemble engine: %w", err)
	}
	a.engine = eng

	// ── 4. Observability server ──────────────────────────────────────────
	if addr := cfg.Server.ListenAddr; addr != "" {
		a.obs = observe.NewServer(addr, a.readinessChecks()...)
	}

	// ── 5. Config watcher ────────────────────────────────────────────────
	if a.watchPath != "" {
		w, err := config.NewWatcher(a.watchPath, a.applyReload)
		if err != nil {
			return nil, fmt.Errorf("app: start config watcher: %w", err)
		}
		a.watcher = w
		a.closers = append(a.closers, func() error {
			w.Stop()
			return nil
		})
	}

	return a, nil
}

// readinessChecks builds the /readyz probes for the observability server.
func (a *App) readinessChecks() []observe.Checker {
	return []observe.Checker{
		{
			Name: "session",
			Check: func(context.Context) error {
				if a.sess.State() == session.StateTerminated {
					return errors.New("session terminated")
				}
				return nil
			},
		},
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run drives the conversation engine and, when configured, the
// observability server. It blocks until the engine finishes — the user
// said goodbye, the input source closed, or ctx was cancelled — and then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	if a.obs != nil {
		g.Go(func() error {
			return a.obs.Run(gctx)
		})
	}

	g.Go(func() error {
		// The engine ending for any reason ends the whole app.
		defer cancel()
		return a.engine.Run(gctx)
	})

	slog.Info("app running",
		"assistant", a.cfg.Assistant.Name,
		"generative_backend", a.providers.Dialog != nil,
		"hot_reload", a.watcher != nil,
	)
	return g.Wait()
}

// ─── Reload ──────────────────────────────────────────────────────────────────

// applyReload is the config watcher callback. Hot-reloadable changes take
// effect immediately; everything else logs a restart hint.
func (a *App) applyReload(old, new *config.Config) {
	d := config.Diff(old, new)

	if d.LogLevelChanged {
		if a.logLevel != nil {
			a.logLevel.Set(d.NewLogLevel.Slog())
			slog.Info("log level updated", "level", d.NewLogLevel)
		} else {
			slog.Warn("log level changed but no level var is wired", "level", d.NewLogLevel)
		}
	}

	if d.PersonalityChanged {
		if mode, ok := personality.ParseMode(d.NewPersonality); ok {
			a.sess.SetMode(mode)
			speech := mode.Speech()
			a.providers.Speaker.Configure(speech.RateWPM, speech.Volume)
			slog.Info("personality updated", "mode", mode)
		}
	}

	if d.UserNameChanged {
		// The session's user name is fixed at startup; the new value only
		// reaches backend prompts after a restart.
		slog.Info("user name change takes effect on next start", "user_name", d.NewUserName)
	}

	if d.RestartRequired {
		slog.Warn("config changes require a restart to take effect")
	}
}

// Session exposes the conversation session, mainly for probes and tests.
func (a *App) Session() *session.Session {
	return a.sess
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down app-owned resources in order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned. Shutdown is
// idempotent.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

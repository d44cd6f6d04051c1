// Command orin is the main entry point for the Orin voice assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/orin-ai/orin/internal/app"
	"github.com/orin-ai/orin/internal/config"
	"github.com/orin-ai/orin/internal/dialog"
	dialoganyllm "github.com/orin-ai/orin/internal/dialog/anyllm"
	dialogopenai "github.com/orin-ai/orin/internal/dialog/openai"
	"github.com/orin-ai/orin/internal/observe"
	"github.com/orin-ai/orin/internal/resilience"
	"github.com/orin-ai/orin/internal/voice"
	"github.com/orin-ai/orin/internal/voice/console"
	"github.com/orin-ai/orin/internal/voice/espeak"
	"github.com/orin-ai/orin/internal/voice/whisperhttp"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "orin.yaml", "path to the YAML configuration file")
	hotReload := flag.Bool("hot-reload", true, "watch the config file and apply hot-reloadable changes")
	flag.Parse()

	// API keys may live in a local .env during development; a missing file
	// is fine.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "orin: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "orin: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Server.LogLevel.Slog())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("orin starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(observe.ProviderConfig{
		ServiceName:    "orin",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg, assistantName(cfg))

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		printTroubleshooting()
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	opts := []app.Option{app.WithLogLevelVar(logLevel)}
	if *hotReload {
		opts = append(opts, app.WithConfigWatcher(*configPath))
	}
	application, err := app.New(cfg, providers, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	return 0
}

// assistantName returns the configured assistant name, defaulting to "orin".
func assistantName(cfg *config.Config) string {
	if cfg.Assistant.Name != "" {
		return cfg.Assistant.Name
	}
	return "orin"
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// anyLLMProviders are the dialog backends served through the any-llm
// multiplexer. Each uses an optional API key plus an optional base URL,
// except ollama which is a local server addressed by base URL alone.
var anyLLMProviders = []string{
	"openai", "anthropic", "gemini",
	"deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the provider
// from the real implementation packages.
//
// The console capture, recognizer, and speaker share one instance so a
// single goroutine owns stdin regardless of how many slots name "console".
func registerBuiltinProviders(reg *config.Registry, name string) {
	var (
		consoleOnce sync.Once
		shared      *console.Console
	)
	sharedConsole := func() *console.Console {
		consoleOnce.Do(func() {
			shared = console.New(name, os.Stdin, os.Stdout)
		})
		return shared
	}

	// ── Capture ───────────────────────────────────────────────────────────────

	reg.RegisterCapture("console", func(config.ProviderEntry) (voice.Capture, error) {
		return sharedConsole(), nil
	})

	// ── Recognizer ────────────────────────────────────────────────────────────

	reg.RegisterRecognizer("console", func(config.ProviderEntry) (voice.Recognizer, error) {
		return sharedConsole(), nil
	})

	reg.RegisterRecognizer("whisper", func(entry config.ProviderEntry) (voice.Recognizer, error) {
		var opts []whisperhttp.Option
		if entry.Model != "" {
			opts = append(opts, whisperhttp.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisperhttp.WithLanguage(lang))
		}
		return whisperhttp.New(entry.BaseURL, opts...)
	})

	// ── Speaker ───────────────────────────────────────────────────────────────

	reg.RegisterSpeaker("console", func(config.ProviderEntry) (voice.Speaker, error) {
		return sharedConsole(), nil
	})

	reg.RegisterSpeaker("espeak", func(entry config.ProviderEntry) (voice.Speaker, error) {
		var opts []espeak.Option
		if bin := optString(entry.Options, "binary"); bin != "" {
			opts = append(opts, espeak.WithBinary(bin))
		}
		if v := optString(entry.Options, "voice"); v != "" {
			opts = append(opts, espeak.WithVoice(v))
		}
		return espeak.New(opts...), nil
	})

	// ── Dialog ────────────────────────────────────────────────────────────────

	for _, providerName := range anyLLMProviders {
		reg.RegisterDialog(providerName, func(entry config.ProviderEntry) (dialog.Backend, error) {
			var libOpts []anyllmlib.Option
			if entry.APIKey != "" {
				libOpts = append(libOpts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				libOpts = append(libOpts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return dialoganyllm.New(providerName, entry.Model, libOpts, anyLLMOptions(entry)...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterDialog("ollama", func(entry config.ProviderEntry) (dialog.Backend, error) {
		var libOpts []anyllmlib.Option
		if entry.BaseURL != "" {
			libOpts = append(libOpts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return dialoganyllm.New("ollama", entry.Model, libOpts, anyLLMOptions(entry)...)
	})

	// openai-direct talks to the OpenAI API through the official SDK instead
	// of the any-llm multiplexer.
	reg.RegisterDialog("openai-direct", func(entry config.ProviderEntry) (dialog.Backend, error) {
		var opts []dialogopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, dialogopenai.WithBaseURL(entry.BaseURL))
		}
		if org := optString(entry.Options, "organization"); org != "" {
			opts = append(opts, dialogopenai.WithOrganization(org))
		}
		return dialogopenai.New(entry.APIKey, entry.Model, opts...)
	})
}

// anyLLMOptions extracts the generation tunables shared by every any-llm
// backed dialog provider.
func anyLLMOptions(entry config.ProviderEntry) []dialoganyllm.Option {
	var opts []dialoganyllm.Option
	if n := optInt(entry.Options, "max_tokens"); n > 0 {
		opts = append(opts, dialoganyllm.WithMaxTokens(n))
	}
	if t, ok := optFloat(entry.Options, "temperature"); ok {
		opts = append(opts, dialoganyllm.WithTemperature(t))
	}
	return opts
}

// buildProviders instantiates the providers named in cfg using the registry
// and returns them in an [app.Providers] struct. Voice slots left blank
// fall back to the console transport so an empty config still runs as a
// text chat. A dialog provider with fallbacks is wrapped in a circuit
// breaker chain.
func buildProviders(cfg *config.Config, reg *config.Registry) (app.Providers, error) {
	var ps app.Providers

	captureEntry := cfg.Providers.Capture
	if captureEntry.Name == "" {
		captureEntry.Name = "console"
	}
	capture, err := reg.CreateCapture(captureEntry)
	if err != nil {
		return ps, fmt.Errorf("create capture provider %q: %w", captureEntry.Name, err)
	}
	ps.Capture = capture

	recognizerEntry := cfg.Providers.Recognizer
	if recognizerEntry.Name == "" {
		recognizerEntry.Name = "console"
	}
	recognizer, err := reg.CreateRecognizer(recognizerEntry)
	if err != nil {
		return ps, fmt.Errorf("create recognizer provider %q: %w", recognizerEntry.Name, err)
	}
	ps.Recognizer = recognizer

	speakerEntry := cfg.Providers.Speaker
	if speakerEntry.Name == "" {
		speakerEntry.Name = "console"
	}
	speaker, err := reg.CreateSpeaker(speakerEntry)
	if err != nil {
		return ps, fmt.Errorf("create speaker provider %q: %w", speakerEntry.Name, err)
	}
	ps.Speaker = speaker

	if name := cfg.Providers.Dialog.Name; name != "" {
		primary, err := reg.CreateDialog(cfg.Providers.Dialog)
		if err != nil {
			return ps, fmt.Errorf("create dialog provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "dialog", "name", name)

		chain := resilience.NewBackendChain(name, primary, resilience.BreakerConfig{})
		for _, entry := range cfg.Providers.DialogFallbacks {
			fb, err := reg.CreateDialog(entry)
			if err != nil {
				return ps, fmt.Errorf("create dialog fallback %q: %w", entry.Name, err)
			}
			chain.AddFallback(entry.Name, fb)
			slog.Info("provider created", "kind", "dialog-fallback", "name", entry.Name)
		}
		ps.Dialog = chain
	} else {
		slog.Info("no dialog provider configured, using built-in responses only")
	}

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          Orin — startup summary       ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printField("Assistant", assistantName(cfg))
	printProvider("Capture", orDefault(cfg.Providers.Capture.Name, "console"), "")
	printProvider("Recognizer", orDefault(cfg.Providers.Recognizer.Name, "console"), cfg.Providers.Recognizer.Model)
	printProvider("Speaker", orDefault(cfg.Providers.Speaker.Name, "console"), "")
	printProvider("Dialog", cfg.Providers.Dialog.Name, cfg.Providers.Dialog.Model)
	printField("Fallbacks", fmt.Sprintf("%d", len(cfg.Providers.DialogFallbacks)))
	if cfg.Server.ListenAddr != "" {
		printField("Listen addr", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printField(kind, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	printField(kind, value)
}

func printTroubleshooting() {
	fmt.Fprintln(os.Stderr, `
Troubleshooting:
  - dialog providers need an API key in the config or the provider's usual
    environment variable (e.g. OPENAI_API_KEY); a .env file next to the
    binary is loaded automatically
  - the "whisper" recognizer needs a running whisper.cpp server; set
    providers.recognizer.base_url to its address
  - the "espeak" speaker needs the espeak-ng binary on PATH
  - leave the voice provider slots empty to chat over the terminal instead`)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	s, _ := opts[key].(string)
	return s
}

// optInt extracts an int value, tolerating the float64 that YAML decoding
// may produce.
func optInt(opts map[string]any, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func optFloat(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/orin-ai/orin/internal/personality"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"capture":    {"console"},
	"recognizer": {"whisper", "console"},
	"speaker":    {"espeak", "console"},
	"dialog":     {"openai", "openai-direct", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Assistant
	if cfg.Assistant.WakeMatch != "" && !cfg.Assistant.WakeMatch.IsValid() {
		errs = append(errs, fmt.Errorf("assistant.wake_match %q is invalid; valid values: jaccard, phonetic", cfg.Assistant.WakeMatch))
	}
	if cfg.Assistant.Personality != "" {
		if _, ok := personality.ParseMode(cfg.Assistant.Personality); !ok {
			errs = append(errs, fmt.Errorf("assistant.personality %q is invalid; valid values: friendly, professional, mafia, gangster, humorous", cfg.Assistant.Personality))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("capture", cfg.Providers.Capture.Name)
	validateProviderName("recognizer", cfg.Providers.Recognizer.Name)
	validateProviderName("speaker", cfg.Providers.Speaker.Name)
	validateProviderName("dialog", cfg.Providers.Dialog.Name)
	for i, entry := range cfg.Providers.DialogFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.dialog_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("dialog", entry.Name)
	}

	// Fallbacks without a primary make no sense.
	if cfg.Providers.Dialog.Name == "" && len(cfg.Providers.DialogFallbacks) > 0 {
		errs = append(errs, errors.New("providers.dialog_fallbacks requires providers.dialog to be set"))
	}

	// Availability warnings
	if cfg.Providers.Dialog.Name == "" {
		slog.Warn("no dialog provider configured; the assistant will rely on built-in responses only")
	}

	// Timers
	for _, tc := range []struct {
		name string
		d    Duration
	}{
		{"asleep_listen", cfg.Timers.AsleepListen},
		{"awake_listen", cfg.Timers.AwakeListen},
		{"active_listen", cfg.Timers.ActiveListen},
		{"phrase_limit", cfg.Timers.PhraseLimit},
		{"sleep_fresh", cfg.Timers.SleepFresh},
		{"sleep_engaged", cfg.Timers.SleepEngaged},
		{"inactivity", cfg.Timers.Inactivity},
		{"backend_timeout", cfg.Timers.BackendTimeout},
	} {
		if tc.d < 0 {
			errs = append(errs, fmt.Errorf("timers.%s must not be negative", tc.name))
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}

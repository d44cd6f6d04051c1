// Package config provides the configuration schema, loader, provider
// registry, and file watcher for the Orin voice assistant.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l onto the corresponding [slog.Level]. Unrecognised values map
// to [slog.LevelInfo].
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WakeMatch selects the fuzzy matching strategy for wake word detection.
type WakeMatch string

const (
	// WakeMatchJaccard compares character sets; cheap and tolerant of
	// misheard vowels.
	WakeMatchJaccard WakeMatch = "jaccard"

	// WakeMatchPhonetic combines Double Metaphone codes with Jaro-Winkler
	// similarity; stricter about sound-alike false positives.
	WakeMatchPhonetic WakeMatch = "phonetic"
)

// IsValid reports whether w is a recognised wake matching strategy.
func (w WakeMatch) IsValid() bool {
	return w == WakeMatchJaccard || w == WakeMatchPhonetic
}

// Duration wraps time.Duration with YAML decoding from strings like "45s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for the assistant.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Providers ProvidersConfig `yaml:"providers"`
	Timers    TimersConfig    `yaml:"timers"`
}

// ServerConfig holds network and logging settings for the operational
// HTTP endpoints (health, readiness, metrics).
type ServerConfig struct {
	// ListenAddr is the TCP address the observability server listens on
	// (e.g., ":8080"). Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AssistantConfig describes the assistant's identity and behaviour.
type AssistantConfig struct {
	// Name is the assistant's spoken name and the base of its wake
	// phrases. Default: "orin".
	Name string `yaml:"name"`

	// UserName is how the assistant addresses the user. Default: "User".
	UserName string `yaml:"user_name"`

	// WakeMatch selects the fuzzy wake word matcher. Default: "jaccard".
	WakeMatch WakeMatch `yaml:"wake_match"`

	// Personality is the starting personality mode: friendly,
	// professional, mafia, gangster, or humorous. Default: "friendly".
	Personality string `yaml:"personality"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	// Capture collects audio (or typed lines) from the user.
	Capture ProviderEntry `yaml:"capture"`

	// Recognizer turns captured audio into text.
	Recognizer ProviderEntry `yaml:"recognizer"`

	// Speaker voices the assistant's replies.
	Speaker ProviderEntry `yaml:"speaker"`

	// Dialog is the generative backend for free-form conversation. When
	// unset, the assistant runs on its built-in response catalog only.
	Dialog ProviderEntry `yaml:"dialog"`

	// DialogFallbacks are tried in order when the primary dialog backend
	// fails or its circuit breaker is open.
	DialogFallbacks []ProviderEntry `yaml:"dialog_fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "whisper", "espeak", "console").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gpt-4o-mini", "base.en").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above.
	Options map[string]any `yaml:"options"`
}

// TimersConfig tunes the conversation loop's time behaviour. Zero values
// fall back to the engine defaults.
type TimersConfig struct {
	// AsleepListen is the listen window while asleep.
	AsleepListen Duration `yaml:"asleep_listen"`

	// AwakeListen is the listen window while awake.
	AwakeListen Duration `yaml:"awake_listen"`

	// ActiveListen is the listen window during an active exchange.
	ActiveListen Duration `yaml:"active_listen"`

	// PhraseLimit caps the length of a single utterance.
	PhraseLimit Duration `yaml:"phrase_limit"`

	// SleepFresh and SleepEngaged are the auto-sleep quiet periods for
	// empty and non-empty conversation history respectively.
	SleepFresh   Duration `yaml:"sleep_fresh"`
	SleepEngaged Duration `yaml:"sleep_engaged"`

	// Inactivity is the silence span before a spoken reminder.
	Inactivity Duration `yaml:"inactivity"`

	// BackendTimeout bounds a single generative backend request.
	BackendTimeout Duration `yaml:"backend_timeout"`
}

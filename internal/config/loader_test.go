package config

import (
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: "info"
assistant:
  name: "orin"
  user_name: "Alex"
  wake_match: "phonetic"
  personality: "friendly"
providers:
  capture:
    name: "console"
  recognizer:
    name: "whisper"
    base_url: "http://localhost:8081"
    model: "base.en"
  speaker:
    name: "espeak"
  dialog:
    name: "openai"
    api_key: "sk-test"
    model: "gpt-4o-mini"
  dialog_fallbacks:
    - name: "ollama"
      base_url: "http://localhost:11434"
      model: "llama3"
timers:
  sleep_fresh: "30s"
  sleep_engaged: "45s"
  inactivity: "5m"
  backend_timeout: "10s"
`

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Assistant.Name != "orin" {
		t.Errorf("assistant.name = %q", cfg.Assistant.Name)
	}
	if cfg.Assistant.WakeMatch != WakeMatchPhonetic {
		t.Errorf("wake_match = %q", cfg.Assistant.WakeMatch)
	}
	if cfg.Providers.Dialog.Name != "openai" {
		t.Errorf("dialog provider = %q", cfg.Providers.Dialog.Name)
	}
	if len(cfg.Providers.DialogFallbacks) != 1 || cfg.Providers.DialogFallbacks[0].Name != "ollama" {
		t.Errorf("dialog_fallbacks = %+v", cfg.Providers.DialogFallbacks)
	}
	if got := cfg.Timers.SleepEngaged.Std(); got != 45*time.Second {
		t.Errorf("sleep_engaged = %v, want 45s", got)
	}
	if got := cfg.Timers.Inactivity.Std(); got != 5*time.Minute {
		t.Errorf("inactivity = %v, want 5m", got)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(`
assistant:
  name: "orin"
  pesronality: "friendly"
`))
	if err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestLoadFromReader_InvalidValuesJoined(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(`
server:
  log_level: "verbose"
assistant:
  wake_match: "levenshtein"
  personality: "sarcastic"
`))
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"server.log_level", "assistant.wake_match", "assistant.personality"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestLoadFromReader_BadDuration(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(`
timers:
  sleep_fresh: "soon"
`))
	if err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidate_FallbacksRequirePrimary(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersConfig{
			DialogFallbacks: []ProviderEntry{{Name: "ollama"}},
		},
	}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "dialog_fallbacks requires providers.dialog") {
		t.Fatalf("err = %v, want fallbacks-require-primary error", err)
	}
}

func TestValidate_FallbackNameRequired(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersConfig{
			Dialog:          ProviderEntry{Name: "openai"},
			DialogFallbacks: []ProviderEntry{{Model: "llama3"}},
		},
	}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "dialog_fallbacks[0].name is required") {
		t.Fatalf("err = %v, want missing-name error", err)
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("empty config should validate: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/orin.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

package config

import "testing"

func baseConfig() *Config {
	return &Config{
		Server: ServerConfig{ListenAddr: ":8080", LogLevel: LogInfo},
		Assistant: AssistantConfig{
			Name:        "orin",
			UserName:    "Alex",
			WakeMatch:   WakeMatchJaccard,
			Personality: "friendly",
		},
		Providers: ProvidersConfig{
			Dialog: ProviderEntry{Name: "openai", Model: "gpt-4o-mini"},
		},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	d := Diff(old, new)
	if d.Any() || d.RestartRequired {
		t.Errorf("diff = %+v, want empty", d)
	}
}

func TestDiff_HotReloadableFields(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Server.LogLevel = LogDebug
	new.Assistant.Personality = "mafia"
	new.Assistant.UserName = "Sam"

	d := Diff(old, new)
	if !d.LogLevelChanged || d.NewLogLevel != LogDebug {
		t.Errorf("log level diff = %+v", d)
	}
	if !d.PersonalityChanged || d.NewPersonality != "mafia" {
		t.Errorf("personality diff = %+v", d)
	}
	if !d.UserNameChanged || d.NewUserName != "Sam" {
		t.Errorf("user name diff = %+v", d)
	}
	if d.RestartRequired {
		t.Error("hot-reloadable changes must not require a restart")
	}
	if !d.Any() {
		t.Error("Any() should report changes")
	}
}

func TestDiff_ProviderChangeRequiresRestart(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Providers.Dialog.Model = "gpt-4o"

	d := Diff(old, new)
	if !d.RestartRequired {
		t.Error("provider change should require a restart")
	}
	if d.Any() {
		t.Error("provider change is not hot-reloadable")
	}
}

func TestDiff_TimerChangeRequiresRestart(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Timers.SleepFresh = Duration(1)

	if d := Diff(old, new); !d.RestartRequired {
		t.Error("timer change should require a restart")
	}
}

func TestDiff_AssistantNameRequiresRestart(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Assistant.Name = "nova"

	if d := Diff(old, new); !d.RestartRequired {
		t.Error("assistant name change should require a restart")
	}
}

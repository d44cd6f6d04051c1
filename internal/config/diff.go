package config

import "reflect"

// DiffResult describes what changed between two configs. Only fields that
// can be safely hot-reloaded are applied live; provider, timer, and
// identity changes set RestartRequired instead.
type DiffResult struct {
	// LogLevelChanged is set when server.log_level differs.
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// PersonalityChanged is set when assistant.personality differs.
	PersonalityChanged bool
	NewPersonality     string

	// UserNameChanged is set when assistant.user_name differs.
	UserNameChanged bool
	NewUserName     string

	// RestartRequired is set when a non-hot-reloadable section changed:
	// providers, timers, the server address, the assistant's name, or the
	// wake matching strategy.
	RestartRequired bool
}

// Any reports whether the diff contains any hot-reloadable change.
func (d DiffResult) Any() bool {
	return d.LogLevelChanged || d.PersonalityChanged || d.UserNameChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) DiffResult {
	d := DiffResult{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Assistant.Personality != new.Assistant.Personality {
		d.PersonalityChanged = true
		d.NewPersonality = new.Assistant.Personality
	}
	if old.Assistant.UserName != new.Assistant.UserName {
		d.UserNameChanged = true
		d.NewUserName = new.Assistant.UserName
	}

	if old.Server.ListenAddr != new.Server.ListenAddr ||
		old.Assistant.Name != new.Assistant.Name ||
		old.Assistant.WakeMatch != new.Assistant.WakeMatch ||
		old.Timers != new.Timers ||
		!reflect.DeepEqual(old.Providers, new.Providers) {
		d.RestartRequired = true
	}

	return d
}

// Package config provides configuration types for Argus.
package config

// Config represents the main Argus configuration.
type Config struct {
	Assistant AssistantConfig `toml:"assistant"`
	Model     ModelConfig     `toml:"model"`
	Paths     PathsConfig     `toml:"paths"`
	Logging   LoggingConfig   `toml:"logging"`
}

// AssistantConfig contains orchestration core settings.
type AssistantConfig struct {
	// HistoryLimit bounds the tool execution history store.
	HistoryLimit int `toml:"history_limit"`

	// SessionWindow is how many recent intent analyses are kept per session.
	SessionWindow int `toml:"session_window"`

	// RetentionHours is how long finished protocol executions are kept
	// in memory before the purge sweep removes them.
	RetentionHours int `toml:"retention_hours"`

	// DefaultProjectPath is the path tools fall back to when the user
	// doesn't name one (e.g. "check the git status").
	DefaultProjectPath string `toml:"default_project_path"`
}

// ModelConfig configures the local model service.
type ModelConfig struct {
	Endpoint       string  `toml:"endpoint"` // e.g. http://localhost:11434
	Name           string  `toml:"name"`     // e.g. "llama3.2"
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// PathsConfig contains filesystem locations.
type PathsConfig struct {
	DataDir string `toml:"data_dir"`
	DB      string `toml:"db"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level       string `toml:"level"` // debug, info, warn, error
	Development bool   `toml:"development"`
}

// Package config handles Argus configuration loading and management.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".argus")

	return &Config{
		Assistant: AssistantConfig{
			HistoryLimit:       50,
			SessionWindow:      10,
			RetentionHours:     24,
			DefaultProjectPath: ".",
		},
		Model: ModelConfig{
			Endpoint:       "http://localhost:11434",
			Name:           "llama3.2",
			Temperature:    0.7,
			TimeoutSeconds: 120,
		},
		Paths: PathsConfig{
			DataDir: dataDir,
			DB:      filepath.Join(dataDir, "argus.db"),
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "read config file", apperrors.CategorySystem)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "parse config file", apperrors.CategoryUser)
	}

	expandPaths(cfg)
	return cfg, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// expandPaths expands a leading ~ in configured paths.
func expandPaths(cfg *Config) {
	homeDir, _ := os.UserHomeDir()

	if len(cfg.Paths.DataDir) > 0 && cfg.Paths.DataDir[0] == '~' {
		cfg.Paths.DataDir = filepath.Join(homeDir, cfg.Paths.DataDir[1:])
	}
	if len(cfg.Paths.DB) > 0 && cfg.Paths.DB[0] == '~' {
		cfg.Paths.DB = filepath.Join(homeDir, cfg.Paths.DB[1:])
	}
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".muninn/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
)

// Load reads configuration from ~/.muninn/configs/config.json
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			return loadFromDefaults(v)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	// Memory store defaults
	v.SetDefault("memory.root", filepath.Join(homeDir, ".muninn/memory"))
	v.SetDefault("memory.user_id", "default")
	v.SetDefault("memory.project", "default")
	v.SetDefault("memory.auto_save", true)
	v.SetDefault("memory.load_user_preferences", true)
	v.SetDefault("memory.load_project_context", true)
	v.SetDefault("memory.retention_days", 90)

	// Index defaults
	v.SetDefault("index.enabled", true)

	// Stats defaults
	v.SetDefault("stats.enabled", true)
	v.SetDefault("stats.type", "sqlite")
	v.SetDefault("stats.sqlite_path", filepath.Join(homeDir, ".muninn/db/stats.db"))

	// Snapshot defaults
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.interval_minutes", 60)
}

// loadFromDefaults creates a config from default values
func loadFromDefaults(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Memory.Root == "" {
		return fmt.Errorf("memory.root is required")
	}
	if cfg.Memory.RetentionDays < 0 {
		return fmt.Errorf("memory.retention_days must not be negative, got %d", cfg.Memory.RetentionDays)
	}

	if cfg.Stats.Enabled {
		if cfg.Stats.Type != "sqlite" && cfg.Stats.Type != "postgres" {
			return fmt.Errorf("stats.type must be 'sqlite' or 'postgres', got '%s'", cfg.Stats.Type)
		}
		if cfg.Stats.Type == "sqlite" && cfg.Stats.SQLitePath == "" {
			return fmt.Errorf("stats.sqlite_path is required when type is 'sqlite'")
		}
		if cfg.Stats.Type == "postgres" && cfg.Stats.PostgresDSN == "" {
			return fmt.Errorf("stats.postgres_dsn is required when type is 'postgres'")
		}
	}

	if cfg.Snapshot.Enabled && cfg.Snapshot.IntervalMinutes < 1 {
		return fmt.Errorf("snapshot.interval_minutes must be at least 1, got %d", cfg.Snapshot.IntervalMinutes)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Memory: MemoryConfig{
			Root:                filepath.Join(homeDir, ".muninn/memory"),
			UserID:              "default",
			Project:             "default",
			AutoSave:            true,
			LoadUserPreferences: true,
			LoadProjectContext:  true,
			RetentionDays:       90,
		},
		Index: IndexConfig{
			Enabled: true,
		},
		Stats: StatsConfig{
			Enabled:    true,
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".muninn/db/stats.db"),
		},
		Snapshot: SnapshotConfig{
			Enabled:         false,
			IntervalMinutes: 60,
		},
	}
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration.
type Config struct {
	Memory   MemoryConfig   `mapstructure:"memory"`
	Index    IndexConfig    `mapstructure:"index"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// MemoryConfig holds the memory store settings.
type MemoryConfig struct {
	Root                string `mapstructure:"root"`
	UserID              string `mapstructure:"user_id"`
	Project             string `mapstructure:"project"`
	AutoSave            bool   `mapstructure:"auto_save"`
	LoadUserPreferences bool   `mapstructure:"load_user_preferences"`
	LoadProjectContext  bool   `mapstructure:"load_project_context"`
	RetentionDays       int    `mapstructure:"retention_days"`
}

// IndexConfig holds keyword index settings.
type IndexConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StatsConfig holds the access-statistics database settings.
type StatsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// SnapshotConfig holds git snapshot settings.
type SnapshotConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/muninn-mcp/muninn/internal/config"
	"github.com/muninn-mcp/muninn/internal/coordinator"
	"github.com/muninn-mcp/muninn/internal/server"
	"github.com/muninn-mcp/muninn/internal/snapshot"
	"github.com/muninn-mcp/muninn/internal/stats"
	"github.com/muninn-mcp/muninn/pkg/scheduler"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version = "dev"

func main() {
	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout
	// Redirect all logging to stderr
	log.SetOutput(os.Stderr)

	configPath := flag.String("config", "", "Path to config file")
	root := flag.String("root", "", "Memory root directory")
	userID := flag.String("user", "", "User id for the memory store")
	project := flag.String("project", "", "Project tag for the memory store")
	cleanup := flag.Bool("cleanup", false, "Run the index eviction sweep and exit")
	days := flag.Int("days", 0, "Retention window in days (with --cleanup)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Muninn MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Server Mode:\n")
		fmt.Fprintf(os.Stderr, "  %s                 Start MCP server (stdio)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMaintenance:\n")
		fmt.Fprintf(os.Stderr, "  %s --cleanup --days 30    Evict index entries older than 30 days\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MUNINN_ROOT        Memory root directory\n")
		fmt.Fprintf(os.Stderr, "  MUNINN_USER        User id for the memory store\n")
		fmt.Fprintf(os.Stderr, "  MUNINN_PROJECT     Project tag for the memory store\n")
	}

	flag.Parse()

	log.Println("Starting Muninn MCP Server...")

	// Load configuration
	var cfg *config.Config
	var err error

	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config from %s: %v", *configPath, err)
			log.Println("Using defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Printf("Loaded configuration from %s", *configPath)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			log.Printf("Warning: Failed to load default config: %v", err)
			log.Println("Using built-in defaults")
			cfg = config.DefaultConfig()
		}
	}

	applyEnvOverrides(cfg)
	applyCLIOverrides(cfg, *root, *userID, *project)

	log.Printf("Configuration: root=%s user=%s project=%s",
		cfg.Memory.Root, cfg.Memory.UserID, cfg.Memory.Project)

	// Access statistics are a side channel: a failure here disables stats
	// but never blocks the server.
	var recorder *stats.Recorder
	if cfg.Stats.Enabled {
		db, err := stats.Connect(&stats.Config{
			Type:        cfg.Stats.Type,
			SQLitePath:  cfg.Stats.SQLitePath,
			PostgresDSN: cfg.Stats.PostgresDSN,
		})
		if err != nil {
			log.Printf("Warning: stats database unavailable, continuing without: %v", err)
		} else {
			defer stats.Close(db) //nolint:errcheck
			recorder, err = stats.NewRecorder(db)
			if err != nil {
				log.Printf("Warning: stats schema migration failed, continuing without: %v", err)
				recorder = nil
			}
		}
	}

	coord, err := coordinator.Open(cfg, recorder)
	if err != nil {
		log.Fatalf("Failed to open memory store: %v", err)
	}
	defer func() {
		if err := coord.SaveAll(); err != nil {
			log.Printf("Warning: failed to persist memory state on shutdown: %v", err)
		}
	}()

	if *cleanup {
		retention := cfg.Memory.RetentionDays
		if *days > 0 {
			retention = *days
		}
		// Plain return so the deferred SaveAll and stats close still run.
		removed, err := coord.CleanupOldMemories(retention)
		if err != nil {
			log.Printf("Eviction sweep failed: %v", err)
			return
		}
		log.Printf("Evicted %d index entries older than %d days", removed, retention)
		return
	}

	var snap *snapshot.Repository
	if cfg.Snapshot.Enabled {
		snap, err = snapshot.OpenOrInit(cfg.Memory.Root)
		if err != nil {
			log.Printf("Warning: snapshots unavailable: %v", err)
			snap = nil
		}
	}

	if cfg.Snapshot.Enabled || cfg.Memory.RetentionDays > 0 {
		interval := cfg.Snapshot.IntervalMinutes
		if interval < 1 {
			interval = 60
		}
		sched := scheduler.NewScheduler(coord, snap, interval, cfg.Memory.RetentionDays)
		sched.Start()
		defer sched.Stop()
		log.Printf("Maintenance scheduler running every %d minutes", interval)
	}

	srv := server.NewMCPServer(Version, cfg, coord, recorder)
	log.Println("Serving MCP over stdio")
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("MUNINN_ROOT"); v != "" {
		cfg.Memory.Root = v
	}
	if v := os.Getenv("MUNINN_USER"); v != "" {
		cfg.Memory.UserID = v
	}
	if v := os.Getenv("MUNINN_PROJECT"); v != "" {
		cfg.Memory.Project = v
	}
}

// applyCLIOverrides applies CLI flag overrides (highest priority)
func applyCLIOverrides(cfg *config.Config, root, userID, project string) {
	if root != "" {
		cfg.Memory.Root = root
	}
	if userID != "" {
		cfg.Memory.UserID = userID
	}
	if project != "" {
		cfg.Memory.Project = project
	}
}

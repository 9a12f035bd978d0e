// Package cli implements the glitchgen command-line interface.
//
// Commands share one [CLI] value holding the logger and the global flags.
// Each command builds its own [engine.Session] from the config file (see
// package config) with flag overrides applied on top.
//
// # Commands
//
//   - apply: glitch one image and export it
//   - variations: write a numbered variation batch plus a collage
//   - folder: glitch many files into a timestamped directory
//   - generate: create a new image from a generator effect
//   - effects: list the effect catalog
//   - studio: interactive session with undo
//   - history, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// turns on the pipeline, history and batch event hooks.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/engine"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "glitchgen"

	// historySubdir holds file-backed snapshot sessions inside the cache dir.
	historySubdir = "history"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// logQuiet silences everything but errors while a full-screen UI runs.
const logQuiet = log.ErrorLevel

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config; config.Path() if empty
	seed       uint64 // --seed; config value if zero
	backend    string // --history; config value if empty
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Config & Session Factory
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.seed != 0 {
		cfg.Seed = c.seed
	}
	if c.backend != "" {
		cfg.History.Backend = c.backend
	}
	if cfg.History.Backend == config.BackendFile && cfg.History.Dir == "" {
		if dir, err := historyDir(); err == nil {
			cfg.History.Dir = dir
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", path, "backend", cfg.History.Backend, "seed", cfg.Seed)
	return cfg, nil
}

// newSession creates an engine session for one command run.
func (c *CLI) newSession(ctx context.Context) (*engine.Session, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := engine.New(ctx, engine.Options{Config: cfg, Logger: c.Logger})
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("session", "seed", s.Seed())
	return s, cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/glitchgen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// historyDir returns the base directory for file-backed snapshot sessions.
func historyDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historySubdir), nil
}

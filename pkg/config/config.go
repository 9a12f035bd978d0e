// Package config loads glitchgen settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/glitchgen/config.toml (falling back to
// ~/.config/glitchgen/config.toml). Every key is optional; missing keys keep
// their [Default] values and a missing file is the same as an empty one.
//
//	seed = 42
//
//	[history]
//	backend = "file"      # file | memory | redis
//	max_entries = 50
//
//	[random]
//	multiple_min = 3
//	multiple_max = 8
//
//	[variations]
//	count = 10
//	min_effects = 3
//	max_effects = 10
//	collage_policy = "letterbox"
//
//	[folder]
//	min_effects = 2
//	max_effects = 5
//
//	[export]
//	jpeg_quality = 95
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/glitchgen/pkg/batch"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/history"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

const appName = "glitchgen"

// History backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full configuration.
type Config struct {
	Seed       uint64           `toml:"seed"` // 0 seeds from the clock
	History    HistoryConfig    `toml:"history"`
	Random     RandomConfig     `toml:"random"`
	Variations VariationsConfig `toml:"variations"`
	Folder     FolderConfig     `toml:"folder"`
	Export     ExportConfig     `toml:"export"`
}

// HistoryConfig selects and tunes the snapshot store.
type HistoryConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"` // file backend base dir; cache dir if empty
	MaxEntries    int      `toml:"max_entries"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisTTL      Duration `toml:"redis_ttl"`
}

// RandomConfig sets the range of the "random multiple" presets.
type RandomConfig struct {
	MultipleMin int `toml:"multiple_min"`
	MultipleMax int `toml:"multiple_max"`
}

// VariationsConfig tunes variation batches.
type VariationsConfig struct {
	Count         int    `toml:"count"`
	MinEffects    int    `toml:"min_effects"`
	MaxEffects    int    `toml:"max_effects"`
	CollagePolicy string `toml:"collage_policy"`
}

// FolderConfig tunes folder batches.
type FolderConfig struct {
	MinEffects int `toml:"min_effects"`
	MaxEffects int `toml:"max_effects"`
}

// ExportConfig tunes image export.
type ExportConfig struct {
	JPEGQuality int `toml:"jpeg_quality"`
}

// Duration is a time.Duration written as a string ("24h", "90m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			Backend:    BackendFile,
			MaxEntries: 50,
			RedisTTL:   Duration{history.DefaultRedisTTL},
		},
		Random: RandomConfig{
			MultipleMin: 3,
			MultipleMax: 8,
		},
		Variations: VariationsConfig{
			Count:         batch.DefaultVariationCount,
			MinEffects:    batch.DefaultVariationMin,
			MaxEffects:    batch.DefaultVariationMax,
			CollagePolicy: string(batch.DefaultCollagePolicy),
		},
		Folder: FolderConfig{
			MinEffects: batch.DefaultFolderMin,
			MaxEffects: batch.DefaultFolderMax,
		},
		Export: ExportConfig{
			JPEGQuality: imagebuf.DefaultJPEGQuality,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path on top of the defaults. A missing file
// yields the defaults. Unknown keys and invalid values are INVALID_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	switch c.History.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.History.RedisAddr == "" {
			return invalid("history.redis_addr is required for the redis backend")
		}
	default:
		return invalid("history.backend must be file, memory or redis (got %q)", c.History.Backend)
	}
	if c.History.MaxEntries < 0 || c.History.MaxEntries == 1 {
		return invalid("history.max_entries must be 0 (unlimited) or at least 2 (got %d)", c.History.MaxEntries)
	}
	if c.History.RedisTTL.Duration < 0 {
		return invalid("history.redis_ttl cannot be negative")
	}

	ranges := []struct {
		name     string
		min, max int
	}{
		{"random.multiple", c.Random.MultipleMin, c.Random.MultipleMax},
		{"variations", c.Variations.MinEffects, c.Variations.MaxEffects},
		{"folder", c.Folder.MinEffects, c.Folder.MaxEffects},
	}
	for _, r := range ranges {
		if err := errors.ValidateEffectRange(r.min, r.max); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s range", r.name)
		}
	}

	if c.Variations.Count < 1 {
		return invalid("variations.count must be positive (got %d)", c.Variations.Count)
	}
	if _, err := batch.ParseCollagePolicy(c.Variations.CollagePolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "variations.collage_policy")
	}
	if q := c.Export.JPEGQuality; q < 1 || q > 100 {
		return invalid("export.jpeg_quality must be between 1 and 100 (got %d)", q)
	}
	return nil
}

// Encode writes the config as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// VariationOptions converts the variations section to batch options.
func (c *Config) VariationOptions() batch.VariationOptions {
	policy, _ := batch.ParseCollagePolicy(c.Variations.CollagePolicy)
	return batch.VariationOptions{
		Count:   c.Variations.Count,
		Range:   batch.EffectRange{Min: c.Variations.MinEffects, Max: c.Variations.MaxEffects},
		Collage: policy,
	}
}

// FolderOptions converts the folder section to batch options.
func (c *Config) FolderOptions() batch.FolderOptions {
	return batch.FolderOptions{
		Range: batch.EffectRange{Min: c.Folder.MinEffects, Max: c.Folder.MaxEffects},
	}
}

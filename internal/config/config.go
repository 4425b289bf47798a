// Package config loads the optional TOML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/warmaster/warmaster/internal/engine"
)

// Config carries operator-tunable settings. Everything has a working
// default; the file only needs the keys being overridden.
type Config struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`

	// TimeoutSeconds bounds each engine invocation.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// WorkDir holds clean bases, masters, and previews. Defaults to a
	// per-run temp directory when empty.
	WorkDir string `toml:"work_dir"`

	DefaultTarget string `toml:"default_target"`
	DefaultTier   string `toml:"default_tier"`

	// StoreTTLMinutes evicts master records after this long; zero
	// keeps them for the life of the process.
	StoreTTLMinutes int `toml:"store_ttl_minutes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		TimeoutSeconds: int(engine.DefaultTimeout / time.Second),
		DefaultTarget:  "default",
		DefaultTier:    "free",
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Runner builds the engine runner this configuration describes.
func (c Config) Runner() *engine.Runner {
	r := engine.NewRunner()
	if c.FFmpegPath != "" {
		r.FFmpegPath = c.FFmpegPath
	}
	if c.FFprobePath != "" {
		r.FFprobePath = c.FFprobePath
	}
	if c.TimeoutSeconds > 0 {
		r.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	return r
}

// StoreTTL converts the configured eviction window to a duration.
func (c Config) StoreTTL() time.Duration {
	return time.Duration(c.StoreTTLMinutes) * time.Minute
}

// Package config loads the sniper's runtime configuration: defaults,
// overridden by an optional YAML file, overridden by SNIPER_* environment
// variables, then validated against a CUE schema.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// MemoryDatabase selects the in-memory backend instead of SQLite.
// Intended for tests and demos; nothing survives the process.
const MemoryDatabase = ":memory:"

// Config holds the runtime knobs of the sniper process.
type Config struct {
	// Database is the SQLite database path, or ":memory:" for the
	// in-memory backend.
	Database string `json:"database" yaml:"database" env:"SNIPER_DATABASE"`

	// ReadBatch bounds how many events one log poll fetches.
	ReadBatch int `json:"read_batch" yaml:"read_batch" env:"SNIPER_READ_BATCH"`

	// PollTimeoutMS bounds, in milliseconds, how long a poll blocks when
	// the log has no new events.
	PollTimeoutMS int `json:"poll_timeout_ms" yaml:"poll_timeout_ms" env:"SNIPER_POLL_TIMEOUT_MS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" env:"SNIPER_LOG_LEVEL"`
}

// schema is the CUE definition every loaded configuration must satisfy.
const schema = `
#Config: {
	database:        string & !=""
	read_batch:      int & >0 & <=1000
	poll_timeout_ms: int & >0
	log_level:       "debug" | "info" | "warn" | "error"
}
`

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:      MemoryDatabase,
		ReadBatch:     16,
		PollTimeoutMS: 1000,
		LogLevel:      "info",
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (skipped when path is empty), then environment overrides, then
// schema validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := sv.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PollTimeout returns PollTimeoutMS as a duration.
func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog level. Unknown values fall back to
// info (Validate rejects them anyway).
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

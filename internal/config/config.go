// Package config assembles runtime settings from defaults, an optional YAML
// file and ACOMPANA_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Guest progress backends.
const (
	GuestFile  = "file"
	GuestRedis = "redis"
	GuestNone  = "none"
)

// Progress strategies.
const (
	ProgressAuto   = "auto"
	ProgressLinear = "linear"
	ProgressGraph  = "graph"
)

// Config holds all application configuration.
type Config struct {
	// Backend selects the questionnaire repository: "sqlite" or "postgres".
	Backend string `yaml:"backend"`

	// UserID identifies the local user sessions are recorded for.
	UserID string `yaml:"user_id"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Guest    GuestConfig    `yaml:"guest"`
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // empty means the default data directory
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GuestConfig configures where pre-account progress (captured names) lives.
type GuestConfig struct {
	Backend string `yaml:"backend"` // file, redis or none

	// Dir holds guest.json for the file backend. Empty means the data directory.
	Dir string `yaml:"dir"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode     string `yaml:"mode"`  // dev, prod or test
	Level    string `yaml:"level"` // debug, info, warn, error
	Redact   bool   `yaml:"redact"`
	HashSalt string `yaml:"hash_salt"`
}

// EngineConfig tunes questionnaire traversal.
type EngineConfig struct {
	// MaxSkips bounds consecutive hidden questions skipped in one step.
	// Zero means the questionnaire's question count.
	MaxSkips int `yaml:"max_skips"`

	// Progress is "auto", "linear" or "graph".
	Progress string `yaml:"progress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		UserID:  "local",
		Guest: GuestConfig{
			Backend: GuestFile,
			TTL:     30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Mode:   "dev",
			Level:  "warn",
			Redact: true,
		},
		Engine: EngineConfig{
			Progress: ProgressAuto,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path tries DefaultPath and ignores a missing file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables only.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	err := cfg.applyEnv()
	return cfg, err
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"ACOMPANA_BACKEND":        &c.Backend,
		"ACOMPANA_USER":           &c.UserID,
		"ACOMPANA_DB":             &c.SQLite.Path,
		"ACOMPANA_POSTGRES_DSN":   &c.Postgres.DSN,
		"ACOMPANA_GUEST_BACKEND":  &c.Guest.Backend,
		"ACOMPANA_GUEST_DIR":      &c.Guest.Dir,
		"ACOMPANA_REDIS_ADDR":     &c.Guest.RedisAddr,
		"ACOMPANA_REDIS_PASSWORD": &c.Guest.RedisPassword,
		"ACOMPANA_LOG_MODE":       &c.Log.Mode,
		"ACOMPANA_LOG_LEVEL":      &c.Log.Level,
		"ACOMPANA_LOG_HASH_SALT":  &c.Log.HashSalt,
		"ACOMPANA_PROGRESS":       &c.Engine.Progress,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ACOMPANA_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACOMPANA_REDIS_DB: %w", err)
		}
		c.Guest.RedisDB = n
	}
	if v := os.Getenv("ACOMPANA_GUEST_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ACOMPANA_GUEST_TTL: %w", err)
		}
		c.Guest.TTL = d
	}
	if v := os.Getenv("ACOMPANA_LOG_REDACT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ACOMPANA_LOG_REDACT: %w", err)
		}
		c.Log.Redact = b
	}
	if v := os.Getenv("ACOMPANA_MAX_SKIPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACOMPANA_MAX_SKIPS: %w", err)
		}
		c.Engine.MaxSkips = n
	}
	return nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("ACOMPANA_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}

	switch c.Guest.Backend {
	case GuestFile, GuestNone:
	case GuestRedis:
		if c.Guest.RedisAddr == "" {
			return fmt.Errorf("ACOMPANA_REDIS_ADDR is required for the redis guest backend")
		}
	default:
		return fmt.Errorf("unknown guest backend: %q", c.Guest.Backend)
	}

	switch c.Engine.Progress {
	case ProgressAuto, ProgressLinear, ProgressGraph:
	default:
		return fmt.Errorf("unknown progress strategy: %q", c.Engine.Progress)
	}
	if c.Engine.MaxSkips < 0 {
		return fmt.Errorf("engine.max_skips must not be negative")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id must not be empty")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/acompana/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "acompana", "config.yaml"), nil
}

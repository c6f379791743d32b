// Package config loads process configuration by layering defaults, an
// optional YAML file, and environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config carries the engine's tunables.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath points to the SQLite ledger file. Empty selects the in-memory
	// ledger (useful for tests and local runs; events do not survive a
	// restart).
	DBPath string `koanf:"db_path"`

	// LockTimeoutMS bounds how long a submission waits for its lot's
	// exclusive section before failing with a busy error.
	LockTimeoutMS int `koanf:"lock_timeout_ms"`

	// CascadeLimit caps auto-bid cascade iterations per submission.
	CascadeLimit int `koanf:"cascade_limit"`

	// FanoutBuffer sizes each live subscriber's channel buffer.
	FanoutBuffer int `koanf:"fanout_buffer"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:          ":8080",
		LogLevel:      "info",
		DBPath:        "",
		LockTimeoutMS: 3000,
		CascadeLimit:  512,
		FanoutBuffer:  64,
	}
}

// LockTimeout returns the lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// Load builds a Config by layering defaults, an optional YAML file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BIDLEDGER_CONFIG is set
//  3. env (prefix BIDLEDGER_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BIDLEDGER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// BIDLEDGER_LOCK_TIMEOUT_MS -> lock_timeout_ms, matching the koanf tags.
	envProvider := env.Provider("BIDLEDGER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "bidledger_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.LockTimeoutMS <= 0 {
		return nil, errors.New("lock_timeout_ms must be positive")
	}
	if cfg.CascadeLimit <= 0 {
		return nil, errors.New("cascade_limit must be positive")
	}
	return &cfg, nil
}

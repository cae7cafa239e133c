package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "STAFFWISE_"
	EnvConfigPath = "STAFFWISE_CONFIG"
)

var logFormats = map[string]bool{"text": true, "json": true}

var sources = map[string]bool{"memory": true, "sqlite": true, "postgres": true}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML): path if non-empty, else STAFFWISE_CONFIG
//  3. env (prefix STAFFWISE_), including values from a .env file in the
//     working directory; variables already set in the process win over .env
func Load(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like STAFFWISE_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	// The path variable itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.ManagerRoles = splitList(cfg.ManagerRoles)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !logFormats[strings.ToLower(c.LogFormat)]:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case !sources[c.Source]:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	case c.Source == "sqlite" && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path is required for the sqlite source", ErrInvalidConfig)
	case c.Source == "postgres" && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for the postgres source", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative", ErrInvalidConfig)
	case c.DBMaxConns < 0:
		return fmt.Errorf("%w: db_max_conns must not be negative", ErrInvalidConfig)
	}
	for _, a := range c.SkillAliases {
		if strings.TrimSpace(a.Canonical) == "" {
			return fmt.Errorf("%w: skill alias without canonical name", ErrInvalidConfig)
		}
	}
	return nil
}

// splitList expands comma separated entries, which is how lists arrive from
// environment variables.
func splitList(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

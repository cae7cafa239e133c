// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a .env file, an optional YAML file and STAFFWISE_ env vars on top.
//   - Errors returned from this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"runtime"

	"github.com/okian/staffwise/internal/domain/model"
)

// SkillAlias is one entry of the skill normalization table.
type SkillAlias struct {
	Canonical string   `koanf:"canonical"`
	Variants  []string `koanf:"variants"`
}

// Config contains process configuration.
type Config struct {
	// ServiceName is reported by the health and index endpoints.
	ServiceName string `koanf:"service_name"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// Source selects the data collaborator: memory, sqlite or postgres.
	Source string `koanf:"source"`

	// FixturesPath is the YAML/JSON file served by the memory source.
	FixturesPath string `koanf:"fixtures_path"`

	// SQLitePath is the database file of the sqlite source.
	SQLitePath string `koanf:"sqlite_path"`

	// DatabaseURL is the PostgreSQL DSN of the postgres source.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns bounds the PostgreSQL connection pool.
	DBMaxConns int `koanf:"db_max_conns"`

	// ConcurrentFetch reads requirements and employees in parallel.
	ConcurrentFetch bool `koanf:"concurrent_fetch"`

	// WorkerCount sets the number of batch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchSize caps the project ids accepted by one batch call.
	MaxBatchSize int `koanf:"max_batch_size"`

	// NormalizerCacheSize bounds the skill normalization cache; 0 disables it.
	NormalizerCacheSize int `koanf:"normalizer_cache_size"`

	// TierWeights maps experience tiers to their scoring weights.
	TierWeights map[string]int `koanf:"tier_weights"`

	// DefaultTierWeight is used for unknown tiers.
	DefaultTierWeight int `koanf:"default_tier_weight"`

	// SkillAliases replaces the built-in skill table when non-empty. Order matters.
	SkillAliases []SkillAlias `koanf:"skill_aliases"`

	// ManagerRoles replaces the built-in manager title phrases when non-empty.
	ManagerRoles []string `koanf:"manager_roles"`

	// CORSAllowedOrigins lists the origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		ServiceName:         "staffwise",
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		Source:              "memory",
		SQLitePath:          "data/staffwise.db",
		DBMaxConns:          10,
		ConcurrentFetch:     true,
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           1024,
		MaxBatchSize:        100,
		NormalizerCacheSize: 4096,
		TierWeights:         model.DefaultTierWeights(),
		DefaultTierWeight:   1,
		CORSAllowedOrigins:  []string{"*"},
	}
}

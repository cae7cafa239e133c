package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/staffwise/internal/adapters/repository"
	service "github.com/okian/staffwise/internal/app"
	"github.com/okian/staffwise/internal/config"
	"github.com/okian/staffwise/internal/domain/scoring"
	"github.com/okian/staffwise/internal/domain/skills"
	"github.com/okian/staffwise/pkg/logger"
)

const app = "staffwise"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          app,
		Short:        "staffwise recommends employees for project staffing requirements",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigPath+")")

	cmd.AddCommand(
		newServeCmd(opts),
		newRecommendCmd(opts),
		newImportCmd(opts),
		newLoadtestCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// runtimeEnv holds the wired collaborators of one command invocation.
type runtimeEnv struct {
	cfg    *config.Config
	log    logger.Logger
	source repository.Source
	svc    *service.Service
}

// loadConfig reads the configuration and initializes the global logger.
func loadConfig(ctx context.Context, opts *rootOptions, logOut io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Output: logOut}); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// setup loads config, opens the configured source and builds the service.
func setup(ctx context.Context, opts *rootOptions, logOut io.Writer) (*runtimeEnv, error) {
	cfg, log, err := loadConfig(ctx, opts, logOut)
	if err != nil {
		return nil, err
	}

	src, err := repository.Open(ctx, repository.Config{
		Kind:         cfg.Source,
		FixturesPath: cfg.FixturesPath,
		SQLitePath:   cfg.SQLitePath,
		DatabaseURL:  cfg.DatabaseURL,
	}, repository.WithMaxConns(int32(cfg.DBMaxConns)))
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.Source, err)
	}
	log.Info(ctx, "data source ready", logger.String("source", cfg.Source))

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithSource(src),
		service.WithNormalizer(newNormalizer(cfg)),
		service.WithScorer(scoring.NewTierScorer(scoring.WithTierWeights(cfg.TierWeights, cfg.DefaultTierWeight))),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithMaxBatchSize(cfg.MaxBatchSize),
		service.WithConcurrentFetch(cfg.ConcurrentFetch),
	)
	return &runtimeEnv{cfg: cfg, log: log, source: src, svc: svc}, nil
}

func (e *runtimeEnv) Close() error {
	return e.source.Close()
}

func newNormalizer(cfg *config.Config) *skills.Normalizer {
	aliases := make([]skills.Alias, 0, len(cfg.SkillAliases))
	for _, a := range cfg.SkillAliases {
		aliases = append(aliases, skills.Alias{Canonical: a.Canonical, Variants: a.Variants})
	}
	return skills.New(
		skills.WithAliases(aliases),
		skills.WithManagerRoles(cfg.ManagerRoles),
		skills.WithCacheSize(cfg.NormalizerCacheSize),
	)
}

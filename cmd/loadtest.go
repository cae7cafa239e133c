package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/staffwise/internal/adapters/repository"
	"github.com/okian/staffwise/internal/loadtest"
	"github.com/okian/staffwise/pkg/logger"
)

func newLoadtestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Generate synthetic data and probe a running server with it",
	}
	cmd.AddCommand(newLoadtestGenerateCmd(), newLoadtestRunCmd(opts))
	return cmd
}

func newLoadtestGenerateCmd() *cobra.Command {
	var (
		cfg loadtest.GenerateConfig
		out string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := loadtest.MarshalFixture(loadtest.Generate(cfg))
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d employees and %d project requirements to %s\n",
				cfg.Employees, cfg.Projects*cfg.RequirementsPerProject, out)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&cfg.Employees, "employees", 1000, "number of employees")
	cmd.Flags().IntVar(&cfg.Projects, "projects", 100, "number of projects")
	cmd.Flags().IntVar(&cfg.RequirementsPerProject, "requirements", 3, "requirement rows per project")
	cmd.Flags().Float64Var(&cfg.ManagerRatio, "manager-ratio", 0.1, "share of employees with a manager title")
	cmd.Flags().Float64Var(&cfg.UnavailableRatio, "unavailable-ratio", 0.2, "share of employees not available")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newLoadtestRunCmd(opts *rootOptions) *cobra.Command {
	var (
		cfg      loadtest.Config
		fixtures string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe a server loaded with a fixture and verify every response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appCfg, _, err := loadConfig(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if fixtures == "" {
				fixtures = appCfg.FixturesPath
			}
			f, err := repository.LoadFixture(fixtures)
			if err != nil {
				return err
			}

			stats, err := loadtest.Run(ctx, cfg, loadtest.NewVerifier(f, newNormalizer(appCfg)))
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "requests=%d failed=%d violations=%d assigned=%d duration=%s\n",
					stats.Requests, stats.Failed, stats.Violations, stats.Assigned, stats.Duration)
			}
			if err != nil {
				logger.Get().Error(ctx, "load test failed", logger.Error(err))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "concurrent requests (default CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().Int64SliceVar(&cfg.Projects, "project", nil, "project ids to probe (default: all in the fixture)")
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture the server was loaded with (default: fixtures_path from config)")
	return cmd
}

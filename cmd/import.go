package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/staffwise/internal/adapters/repository"
	"github.com/okian/staffwise/pkg/logger"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var fixtures, sqlitePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a YAML/JSON fixture file into the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if fixtures == "" {
				fixtures = cfg.FixturesPath
			}
			if fixtures == "" {
				return fmt.Errorf("%w: no fixture file; pass --fixtures or set fixtures_path", repository.ErrNotConfigured)
			}
			if sqlitePath == "" {
				sqlitePath = cfg.SQLitePath
			}

			f, err := repository.LoadFixture(fixtures)
			if err != nil {
				return err
			}
			db, err := repository.OpenSQLite(sqlitePath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Import(ctx, f); err != nil {
				return fmt.Errorf("import %s: %w", fixtures, err)
			}
			log.Info(ctx, "fixture imported",
				logger.String("fixtures", fixtures),
				logger.String("sqlite_path", db.Path()),
				logger.Int("project_requirements", len(f.ProjectRequirements)),
				logger.Int("user_details", len(f.UserDetails)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d project requirements and %d users into %s\n",
				len(f.ProjectRequirements), len(f.UserDetails), db.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture file (default: fixtures_path from config)")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "", "database file (default: sqlite_path from config)")
	return cmd
}

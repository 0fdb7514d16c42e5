package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/config"
	"relay-graphql/internal/dbexec"
	"relay-graphql/internal/logging"
	"relay-graphql/internal/seed"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo tables and fill them with generated rows",
		Long: `Seed creates the people, posts and tags tables when they are missing and
tops the people table up to --seed.people rows. Rows already present are
kept, so running seed twice with the same settings is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := logging.NewLogger(logging.Config{
				Level:  cfg.Observability.Logging.Level,
				Format: cfg.Observability.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err := cfg.Validate().Report(logger.Logger); err != nil {
				return err
			}

			result, err := runSeed(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"people: %d existing, %d created\nposts: %d created\ntags: %d created\n",
				result.Existing, result.People, result.Posts, result.Tags)
			return err
		},
	}
	config.DefineFlags(cmd.Flags())
	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, logger *logging.Logger) (seed.Result, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = config.DriverMySQL
	}
	if err := cfg.Database.RegisterTLS(); err != nil {
		return seed.Result{}, fmt.Errorf("failed to register database TLS config: %w", err)
	}
	dsn, err := cfg.Database.DataSourceName()
	if err != nil {
		return seed.Result{}, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return seed.Result{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if cfg.Database.InMemory() {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		return seed.Result{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	exec := dbexec.NewStandardExecutor(db)
	if err := seed.Migrate(ctx, exec, driver); err != nil {
		return seed.Result{}, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database schema migrated", slog.String("dialect", driver))

	result, err := seed.New(exec, catalog.Demo(nil), cfg.Seed.RandomSeed, logger.Logger).Seed(ctx, cfg.Seed.People)
	if err != nil {
		return seed.Result{}, fmt.Errorf("failed to seed database: %w", err)
	}
	return result, nil
}

package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/config"
	"github.com/mishasvintus/bugcake/internal/logger"
	"github.com/mishasvintus/bugcake/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(m *migration) error {
			if err := repository.Migrate(m.db); err != nil {
				return err
			}
			return m.printVersion(cmd)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(m *migration) error {
			if err := repository.MigrateDown(m.db); err != nil {
				return err
			}
			return m.printVersion(cmd)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(m *migration) error {
			return m.printVersion(cmd)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

type migration struct {
	db  *sql.DB
	log *zap.Logger
}

func (m *migration) printVersion(cmd *cobra.Command) error {
	version, dirty, err := repository.SchemaVersion(m.db)
	if err != nil {
		return err
	}
	m.log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}

// withDB runs fn with a database connection only; migrations need no services.
func withDB(fn func(m *migration) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := repository.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return fn(&migration{db: db, log: log})
}

package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/db"
	"github.com/mindtab/mindtab/internal/logger"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect database migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sqlx.DB, driver string) error {
				return db.RunMigrations(conn.DB, driver)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sqlx.DB, driver string) error {
				return db.MigrateDown(conn.DB, driver)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sqlx.DB, driver string) error {
				version, err := db.Version(conn.DB, driver)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			})
		},
	})

	return migrate
}

func CleanupCmd() *cobra.Command {
	var olderThan time.Duration

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete used or expired magic link tokens and expired extension sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sqlx.DB, driver string) error {
				tokens, err := repository.NewTokenRepository(conn).CleanupExpired(olderThan)
				if err != nil {
					return fmt.Errorf("token cleanup: %w", err)
				}
				sessions, err := repository.NewSessionRepository(conn).DeleteExpired(time.Now())
				if err != nil {
					return fmt.Errorf("session cleanup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d tokens, %d sessions\n", tokens, sessions)
				return nil
			})
		},
	}
	cleanup.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "keep used tokens younger than this")

	return cleanup
}

// withDB opens the configured database for one command.
func withDB(fn func(conn *sqlx.DB, driver string) error) error {
	cfg := config.Load()
	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()

	return fn(conn, cfg.DBDriver)
}

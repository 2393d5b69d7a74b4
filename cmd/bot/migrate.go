package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shift_report_bot/internal/infra/config"
	idb "shift_report_bot/internal/infra/database"
	"shift_report_bot/internal/infra/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load application configuration: %w", err)
		}
		logger.Init(cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer db.Close()

		if err := idb.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Log.Info("Database schema is up to date.")
		return nil
	},
}

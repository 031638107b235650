package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/daily-diet-api/internal/config"
	"github.com/redmonkez12/daily-diet-api/internal/database"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the daily diet database schema",
		SilenceUsage: true,
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runUp,
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE:  runDown,
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 rolls back all)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE:  runVersion,
	}

	rootCmd.AddCommand(upCmd, downCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd.Context(), func(mg *database.Migrator, logger *logging.Logger) error {
		if err := mg.Up(); err != nil {
			return err
		}
		return logVersion(mg, logger)
	})
}

func runDown(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")

	return withMigrator(cmd.Context(), func(mg *database.Migrator, logger *logging.Logger) error {
		if err := mg.Down(steps); err != nil {
			return err
		}
		return logVersion(mg, logger)
	})
}

func runVersion(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd.Context(), func(mg *database.Migrator, logger *logging.Logger) error {
		return logVersion(mg, logger)
	})
}

func logVersion(mg *database.Migrator, logger *logging.Logger) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	logger.Info("schema version", "version", version, "dirty", dirty)
	return nil
}

func withMigrator(ctx context.Context, fn func(*database.Migrator, *logging.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	mg, err := database.NewMigrator(db.DB)
	if err != nil {
		db.Close()
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			logger.Error("failed to close migrator", "error", err.Error())
		}
	}()

	if err := fn(mg, logger); err != nil {
		logger.Error("migration failed", "error", err.Error())
		return err
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brightwash/catalog-server/internal/config"
	"github.com/brightwash/catalog-server/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}

	var confirm bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all catalog data)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop the schema without --yes")
			}
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			if err := database.RollbackAll(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			log.Info().Msg("migrations rolled back")
			return nil
		},
	}
	down.Flags().BoolVar(&confirm, "yes", false, "confirm dropping all tables")

	cmd.AddCommand(up, down)
	return cmd
}

func loadDatabaseConfig() (*config.DatabaseConfig, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)
	return cfg, nil
}

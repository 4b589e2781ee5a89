package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brightwash/catalog-server/internal/database"
	"github.com/brightwash/catalog-server/internal/repository"
	"github.com/brightwash/catalog-server/internal/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default packages and an optional admin user",
		Long: `Applies migrations, inserts the default wash packages when the catalog is
empty and, if ADMIN_USERNAME and ADMIN_PASSWORD are both set, creates that
admin account. There is no default password; without credentials the first
admin is created through POST /api/auth/setup instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}

			username, password := cfg.AdminUsername, cfg.AdminPassword
			if username != "" || password != "" {
				if err := cfg.ValidateSeedAdmin(); err != nil {
					return err
				}
			}

			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			db := database.NewPool(cfg.DatabaseURL)
			defer db.Close()

			seeder := seed.NewSeeder(
				seed.InTx(db),
				repository.NewAdminUserRepository(db),
			)
			res, err := seeder.Run(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			log.Info().
				Int("packages_created", res.PackagesCreated).
				Bool("admin_created", res.AdminCreated).
				Msg("seed complete")
			return nil
		},
	}
}

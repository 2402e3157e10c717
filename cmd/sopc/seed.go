package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sop-architect/backend/internal/config"
	"github.com/sop-architect/backend/internal/logging"
	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/internal/seed"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the preset workflow templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.NewLogger()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			pool, err := initDatabase(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			defer pool.Close()

			store := repository.NewPostgresStore(pool)
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}

			created, err := seed.Templates(ctx, store, logger)
			if err != nil {
				return err
			}
			logger.Info("Seeding complete", "created", created)
			return nil
		},
	}
}

package cli

import (
	"econquest-progress-service/internal/infra/postgres"
	"econquest-progress-service/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd loads the demo catalog and makes sure the settings row exists.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo module, its activities and the settings row",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := runMigrations(ctx, db, logger); err != nil {
				return err
			}
			settings, err := postgres.NewSettingsRepository(db, cfg.Game.Settings()).EnsureSettings(ctx)
			if err != nil {
				return err
			}

			demo := seed.DemoModule()
			moduleID, inserted, err := postgres.SeedModule(ctx, db, demo)
			if err != nil {
				return err
			}
			ids, err := postgres.ActivityIDs(ctx, db, moduleID)
			if err != nil {
				return err
			}
			logger.Info("seed complete",
				zap.String("module", demo.Title),
				zap.Int64("module_id", moduleID),
				zap.Bool("inserted", inserted),
				zap.Int64s("activity_ids", ids),
				zap.Int("xp_base", settings.XPBase))
			return nil
		},
	}
}

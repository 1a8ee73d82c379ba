package cli

import (
	"encoding/json"
	"fmt"

	"econquest-progress-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSettingsCmd prints the game settings and applies any flags given.
func NewSettingsCmd(configPath *string) *cobra.Command {
	var (
		xpBase      int
		xpGrowth    int
		maxAttempts int
		unlimited   bool
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the leveling and attempt-limit settings",
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

			repo := postgres.NewSettingsRepository(db, cfg.Game.Settings())
			settings, err := repo.EnsureSettings(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			changed := false
			if flags.Changed("xp-base") {
				if xpBase < 1 {
					return fmt.Errorf("--xp-base must be at least 1")
				}
				settings.XPBase, changed = xpBase, true
			}
			if flags.Changed("xp-growth") {
				if xpGrowth < 0 {
					return fmt.Errorf("--xp-growth must not be negative")
				}
				settings.XPGrowth, changed = xpGrowth, true
			}
			if flags.Changed("max-attempts") {
				if maxAttempts < 0 {
					return fmt.Errorf("--max-attempts must not be negative")
				}
				limit := maxAttempts
				settings.MaxAttemptsDefault, changed = &limit, true
			}
			if unlimited {
				settings.MaxAttemptsDefault, changed = nil, true
			}
			if changed {
				if err := repo.SaveSettings(ctx, settings); err != nil {
					return err
				}
				if settings, err = repo.EnsureSettings(ctx); err != nil {
					return err
				}
			}

			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&xpBase, "xp-base", 0, "XP needed to leave level 1")
	cmd.Flags().IntVar(&xpGrowth, "xp-growth", 0, "extra XP needed per level")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "default attempt limit per activity")
	cmd.Flags().BoolVar(&unlimited, "unlimited", false, "remove the default attempt limit")
	cmd.MarkFlagsMutuallyExclusive("max-attempts", "unlimited")
	return cmd
}

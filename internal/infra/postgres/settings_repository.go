package postgres

import (
	"context"
	"fmt"
	"time"

	"econquest-progress-service/internal/domain"
	"github.com/uptrace/bun"
)

const settingsID = 1

// SettingsRepository stores the single game_settings row.
type SettingsRepository struct {
	db       *bun.DB
	defaults domain.GameSettings
	clock    func() time.Time
}

// NewSettingsRepository creates the row from defaults the first time it is read.
func NewSettingsRepository(db *bun.DB, defaults domain.GameSettings) *SettingsRepository {
	return &SettingsRepository{db: db, defaults: defaults, clock: time.Now}
}

func (r *SettingsRepository) EnsureSettings(ctx context.Context) (domain.GameSettings, error) {
	fresh := settingsRow{
		ID:                 settingsID,
		XPBase:             r.defaults.XPBase,
		XPGrowth:           r.defaults.XPGrowth,
		MaxAttemptsDefault: r.defaults.MaxAttemptsDefault,
	}
	if _, err := r.db.NewInsert().
		Model(&fresh).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		return domain.GameSettings{}, fmt.Errorf("create settings: %w", err)
	}

	var row settingsRow
	if err := r.db.NewSelect().Model(&row).Where("id = ?", settingsID).Scan(ctx); err != nil {
		return domain.GameSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, settings domain.GameSettings) error {
	row := settingsRow{
		ID:                 settingsID,
		XPBase:             settings.XPBase,
		XPGrowth:           settings.XPGrowth,
		MaxAttemptsDefault: settings.MaxAttemptsDefault,
		UpdatedAt:          r.clock(),
	}
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("xp_base = EXCLUDED.xp_base").
		Set("xp_growth = EXCLUDED.xp_growth").
		Set("max_attempts_default = EXCLUDED.max_attempts_default").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"econquest-progress-service/internal/seed"
	"github.com/uptrace/bun"
)

// SeedModule inserts the module and its activities unless a module with the same title exists.
// It returns the module ID and whether anything was inserted.
func SeedModule(ctx context.Context, db *bun.DB, module seed.Module) (int64, bool, error) {
	var moduleID int64
	inserted := false
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var existing moduleRow
		err := tx.NewSelect().Model(&existing).Where("title = ?", module.Title).Limit(1).Scan(ctx)
		if err == nil {
			moduleID = existing.ID
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find module: %w", err)
		}

		level, reward := module.Level, module.XPReward
		row := moduleRow{
			Title:       module.Title,
			Summary:     module.Summary,
			Level:       &level,
			XPReward:    &reward,
			IsPublished: module.IsPublished,
		}
		if _, err := tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert module: %w", err)
		}
		moduleID = row.ID

		for _, a := range module.Activities {
			activity := activityRow{
				ModuleID:     moduleID,
				Title:        a.Title,
				Type:         a.Type,
				Position:     a.Position,
				IsPublished:  a.IsPublished,
				MaxPoints:    a.MaxPoints,
				AttemptLimit: a.AttemptLimit,
				DefaultXP:    a.DefaultXP,
				ContentJSON:  a.ContentJSON,
			}
			if _, err := tx.NewInsert().Model(&activity).Returning("id").Exec(ctx); err != nil {
				return fmt.Errorf("insert activity %q: %w", a.Title, err)
			}
		}
		inserted = true
		return nil
	})
	return moduleID, inserted, err
}

// ActivityIDs lists a module's activity IDs in display order.
func ActivityIDs(ctx context.Context, db *bun.DB, moduleID int64) ([]int64, error) {
	var ids []int64
	err := db.NewSelect().
		Model((*activityRow)(nil)).
		Column("id").
		Where("module_id = ?", moduleID).
		OrderExpr("position ASC, id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return ids, nil
}

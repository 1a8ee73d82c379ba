package postgres

import (
	"context"
	"errors"
	"fmt"

	"econquest-progress-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const selectActivity = `
SELECT id, module_id, COALESCE(title, ''), COALESCE(type, ''), COALESCE(position, 0),
       COALESCE(is_published, FALSE), max_points, attempt_limit, default_xp, COALESCE(content_json, '')
FROM activities
WHERE id = $1`

// ActivityLoader reads activity rows from Postgres.
type ActivityLoader struct {
	pool *pgxpool.Pool
}

func NewActivityLoader(pool *pgxpool.Pool) *ActivityLoader {
	return &ActivityLoader{pool: pool}
}

func (l *ActivityLoader) LoadActivity(ctx context.Context, activityID int64) (domain.Activity, error) {
	var a domain.Activity
	err := l.pool.QueryRow(ctx, selectActivity, activityID).Scan(
		&a.ID, &a.ModuleID, &a.Title, &a.Type, &a.Position,
		&a.IsPublished, &a.MaxPoints, &a.AttemptLimit, &a.DefaultXP, &a.ContentJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("load activity: %w", err)
	}
	return a, nil
}

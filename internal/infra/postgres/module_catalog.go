package postgres

import (
	"context"
	"errors"
	"fmt"

	"econquest-progress-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const listModules = `
SELECT m.id, m.title, COALESCE(m.summary, ''), m.level, m.xp_reward, COALESCE(m.is_published, FALSE),
       (SELECT count(*) FROM activities a WHERE a.module_id = m.id),
       (SELECT count(*) FROM attempts t JOIN activities a ON a.id = t.activity_id
         WHERE a.module_id = m.id AND t.user_id = $1)
FROM modules m
ORDER BY m.id`

const selectModule = `
SELECT id, title, COALESCE(summary, ''), level, xp_reward, COALESCE(is_published, FALSE)
FROM modules
WHERE id = $1`

const listPublishedActivities = `
SELECT id, module_id, COALESCE(title, ''), COALESCE(type, ''), COALESCE(position, 0),
       COALESCE(is_published, FALSE), max_points, attempt_limit, default_xp, COALESCE(content_json, '')
FROM activities
WHERE module_id = $1 AND is_published
ORDER BY position ASC, id ASC`

// ModuleCatalog reads modules and their activities from Postgres.
type ModuleCatalog struct {
	pool *pgxpool.Pool
}

func NewModuleCatalog(pool *pgxpool.Pool) *ModuleCatalog {
	return &ModuleCatalog{pool: pool}
}

func (c *ModuleCatalog) ListModules(ctx context.Context, userID int64) ([]domain.ModuleProgress, error) {
	rows, err := c.pool.Query(ctx, listModules, userID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var out []domain.ModuleProgress
	for rows.Next() {
		var p domain.ModuleProgress
		m := &p.Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Summary, &m.Level, &m.XPReward, &m.IsPublished,
			&p.ActivityCount, &p.AttemptCount); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return out, nil
}

func (c *ModuleCatalog) GetModule(ctx context.Context, moduleID int64) (domain.ModuleDetail, error) {
	var detail domain.ModuleDetail
	m := &detail.Module
	err := c.pool.QueryRow(ctx, selectModule, moduleID).Scan(
		&m.ID, &m.Title, &m.Summary, &m.Level, &m.XPReward, &m.IsPublished,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ModuleDetail{}, domain.ErrModuleNotFound
	}
	if err != nil {
		return domain.ModuleDetail{}, fmt.Errorf("load module: %w", err)
	}

	rows, err := c.pool.Query(ctx, listPublishedActivities, moduleID)
	if err != nil {
		return domain.ModuleDetail{}, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.ModuleID, &a.Title, &a.Type, &a.Position,
			&a.IsPublished, &a.MaxPoints, &a.AttemptLimit, &a.DefaultXP, &a.ContentJSON); err != nil {
			return domain.ModuleDetail{}, fmt.Errorf("scan activity: %w", err)
		}
		detail.Activities = append(detail.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return domain.ModuleDetail{}, fmt.Errorf("list activities: %w", err)
	}
	return detail, nil
}

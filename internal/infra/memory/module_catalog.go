package memory

import (
	"context"
	"sort"
	"sync"

	"econquest-progress-service/internal/domain"
)

// AttemptCounter counts a user's attempts on one activity.
type AttemptCounter interface {
	CountAttempts(ctx context.Context, userID, activityID int64) (int, error)
}

// ModuleCatalog is an in-memory implementation of app.ModuleCatalog over a StaticActivityLoader.
type ModuleCatalog struct {
	activities *StaticActivityLoader
	attempts   AttemptCounter

	mu      sync.RWMutex
	modules map[int64]domain.Module
}

func NewModuleCatalog(activities *StaticActivityLoader, attempts AttemptCounter, modules ...domain.Module) *ModuleCatalog {
	c := &ModuleCatalog{
		activities: activities,
		attempts:   attempts,
		modules:    make(map[int64]domain.Module, len(modules)),
	}
	for _, m := range modules {
		c.modules[m.ID] = m
	}
	return c
}

func (c *ModuleCatalog) ListModules(ctx context.Context, userID int64) ([]domain.ModuleProgress, error) {
	c.mu.RLock()
	modules := make([]domain.Module, 0, len(c.modules))
	for _, m := range c.modules {
		modules = append(modules, m)
	}
	c.mu.RUnlock()
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })

	out := make([]domain.ModuleProgress, 0, len(modules))
	for _, m := range modules {
		activities := c.activities.ByModule(m.ID)
		done := 0
		for _, a := range activities {
			n, err := c.attempts.CountAttempts(ctx, userID, a.ID)
			if err != nil {
				return nil, err
			}
			done += n
		}
		out = append(out, domain.ModuleProgress{
			Module:        m,
			ActivityCount: len(activities),
			AttemptCount:  done,
		})
	}
	return out, nil
}

func (c *ModuleCatalog) GetModule(_ context.Context, moduleID int64) (domain.ModuleDetail, error) {
	c.mu.RLock()
	m, ok := c.modules[moduleID]
	c.mu.RUnlock()
	if !ok {
		return domain.ModuleDetail{}, domain.ErrModuleNotFound
	}

	var published []domain.Activity
	for _, a := range c.activities.ByModule(moduleID) {
		if a.IsPublished {
			published = append(published, a)
		}
	}
	sort.Slice(published, func(i, j int) bool {
		if published[i].Position != published[j].Position {
			return published[i].Position < published[j].Position
		}
		return published[i].ID < published[j].ID
	})
	return domain.ModuleDetail{Module: m, Activities: published}, nil
}

// PutModule adds or replaces a module.
func (c *ModuleCatalog) PutModule(m domain.Module) {
	c.mu.Lock()
	c.modules[m.ID] = m
	c.mu.Unlock()
}

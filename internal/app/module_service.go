package app

import (
	"context"
	"errors"
	"fmt"

	"econquest-progress-service/internal/domain"
)

// ModuleCatalog reads modules together with their activities.
type ModuleCatalog interface {
	// ListModules returns every module ordered by id, with its activity count and the user's attempt count
	// across those activities. Percent is left for the caller.
	ListModules(ctx context.Context, userID int64) ([]domain.ModuleProgress, error)
	// GetModule returns the module and its published activities ordered by position, then id.
	GetModule(ctx context.Context, moduleID int64) (domain.ModuleDetail, error)
}

// ModuleService serves the module listing and module detail views.
type ModuleService struct {
	catalog ModuleCatalog
}

func NewModuleService(catalog ModuleCatalog) *ModuleService {
	return &ModuleService{catalog: catalog}
}

// ListModules returns the modules with the student's progress on each.
func (s *ModuleService) ListModules(ctx context.Context, userID int64) ([]domain.ModuleProgress, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidUser
	}
	modules, err := s.catalog.ListModules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list modules: %w", domain.ErrPersistence, err)
	}
	for i := range modules {
		modules[i].Percent = domain.ProgressPercent(modules[i].AttemptCount, modules[i].ActivityCount)
	}
	if modules == nil {
		modules = []domain.ModuleProgress{}
	}
	return modules, nil
}

// ModuleDetail returns a module and the activities a student can open in it.
func (s *ModuleService) ModuleDetail(ctx context.Context, moduleID int64) (domain.ModuleDetail, error) {
	detail, err := s.catalog.GetModule(ctx, moduleID)
	if errors.Is(err, domain.ErrModuleNotFound) {
		return domain.ModuleDetail{}, err
	}
	if err != nil {
		return domain.ModuleDetail{}, fmt.Errorf("%w: load module: %w", domain.ErrPersistence, err)
	}
	if detail.Activities == nil {
		detail.Activities = []domain.Activity{}
	}
	return detail, nil
}

package memory

import (
	"context"
	"sync"
	"time"

	"econquest-progress-service/internal/domain"
)

// SettingsRepository keeps the settings row in process.
type SettingsRepository struct {
	mu       sync.Mutex
	defaults domain.GameSettings
	settings *domain.GameSettings
	clock    func() time.Time
}

// NewSettingsRepository seeds the row lazily from defaults on first access.
func NewSettingsRepository(defaults domain.GameSettings) *SettingsRepository {
	return &SettingsRepository{defaults: defaults, clock: time.Now}
}

func (r *SettingsRepository) EnsureSettings(_ context.Context) (domain.GameSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		s := r.defaults
		s.ID = 1
		s.UpdatedAt = r.clock()
		r.settings = &s
	}
	return *r.settings, nil
}

func (r *SettingsRepository) SaveSettings(_ context.Context, settings domain.GameSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.ID = 1
	settings.UpdatedAt = r.clock()
	r.settings = &settings
	return nil
}

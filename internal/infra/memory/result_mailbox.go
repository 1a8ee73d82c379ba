package memory

import (
	"context"
	"sync"

	"econquest-progress-service/internal/domain"
)

// ResultMailbox is an in-memory implementation of app.ResultMailbox: one slot per user.
type ResultMailbox struct {
	mu    sync.Mutex
	slots map[int64]domain.Result
}

func NewResultMailbox() *ResultMailbox {
	return &ResultMailbox{
		slots: make(map[int64]domain.Result),
	}
}

// Put overwrites whatever result the user had not read yet.
func (m *ResultMailbox) Put(_ context.Context, userID int64, result domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[userID] = result
	return nil
}

func (m *ResultMailbox) Take(_ context.Context, userID int64) (domain.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.slots[userID]
	if ok {
		delete(m.slots, userID)
	}
	return result, ok, nil
}

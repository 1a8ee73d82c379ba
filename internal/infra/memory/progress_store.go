package memory

import (
	"context"
	"sync"
	"time"

	"econquest-progress-service/internal/app"
	"econquest-progress-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
// RunAttempt holds the store lock for the whole unit, and staged writes are only published on success.
type ProgressStore struct {
	mu       sync.Mutex
	clock    func() time.Time
	profiles map[int64]domain.StudentProfile
	attempts []domain.AttemptRecord
	nextID   int64
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		clock:    time.Now,
		profiles: make(map[int64]domain.StudentProfile),
	}
}

func (s *ProgressStore) EnsureProfile(_ context.Context, userID int64) (domain.StudentProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID), nil
}

func (s *ProgressStore) CountAttempts(_ context.Context, userID, activityID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(userID, activityID), nil
}

func (s *ProgressStore) RunAttempt(ctx context.Context, userID, activityID int64, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &attemptTx{store: s, userID: userID, activityID: activityID}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	// commit
	if tx.profileCreated || tx.profile != nil {
		p := tx.lockedProfile
		if tx.profile != nil {
			p = *tx.profile
		}
		s.profiles[userID] = cloneProfile(p)
	}
	s.attempts = append(s.attempts, tx.attempts...)
	return nil
}

// Attempts returns a copy of every recorded attempt for the pair.
func (s *ProgressStore) Attempts(userID, activityID int64) []domain.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AttemptRecord
	for _, a := range s.attempts {
		if a.UserID == userID && a.ActivityID == activityID {
			out = append(out, a)
		}
	}
	return out
}

// Profile returns the stored profile without creating it.
func (s *ProgressStore) Profile(userID int64) (domain.StudentProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return cloneProfile(p), ok
}

// PutProfile stores a profile as-is, bypassing defaults.
func (s *ProgressStore) PutProfile(profile domain.StudentProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = cloneProfile(profile)
}

func (s *ProgressStore) ensureLocked(userID int64) domain.StudentProfile {
	if p, ok := s.profiles[userID]; ok {
		return cloneProfile(p)
	}
	p := domain.NewStudentProfile(userID, s.clock())
	s.profiles[userID] = p
	return cloneProfile(p)
}

func (s *ProgressStore) countLocked(userID, activityID int64) int {
	n := 0
	for _, a := range s.attempts {
		if a.UserID == userID && a.ActivityID == activityID {
			n++
		}
	}
	return n
}

type attemptTx struct {
	store      *ProgressStore
	userID     int64
	activityID int64

	lockedProfile  domain.StudentProfile
	profileCreated bool
	profile        *domain.StudentProfile
	attempts       []domain.AttemptRecord
}

func (t *attemptTx) CountAttempts(_ context.Context) (int, error) {
	return t.store.countLocked(t.userID, t.activityID) + len(t.attempts), nil
}

func (t *attemptTx) LockProfile(_ context.Context) (domain.StudentProfile, error) {
	if t.profile != nil {
		return cloneProfile(*t.profile), nil
	}
	if p, ok := t.store.profiles[t.userID]; ok {
		t.lockedProfile = cloneProfile(p)
	} else {
		t.lockedProfile = domain.NewStudentProfile(t.userID, t.store.clock())
		t.profileCreated = true
	}
	return cloneProfile(t.lockedProfile), nil
}

func (t *attemptTx) SaveProfile(_ context.Context, profile domain.StudentProfile) error {
	p := cloneProfile(profile)
	p.UserID = t.userID
	t.profile = &p
	return nil
}

func (t *attemptTx) InsertAttempt(_ context.Context, attempt *domain.AttemptRecord) error {
	t.store.nextID++
	attempt.ID = t.store.nextID
	t.attempts = append(t.attempts, *attempt)
	return nil
}

func cloneProfile(p domain.StudentProfile) domain.StudentProfile {
	out := p
	if p.CreditScore != nil {
		v := *p.CreditScore
		out.CreditScore = &v
	}
	if p.CashBalance != nil {
		v := *p.CashBalance
		out.CashBalance = &v
	}
	if p.Energy != nil {
		v := *p.Energy
		out.Energy = &v
	}
	return out
}

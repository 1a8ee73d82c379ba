package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"econquest-progress-service/internal/domain"
	"econquest-progress-service/internal/metrics"
	"go.uber.org/zap"
)

// SettingsRepository owns the single GameSettings row.
type SettingsRepository interface {
	// EnsureSettings returns the settings row, creating it with defaults when missing.
	EnsureSettings(ctx context.Context) (domain.GameSettings, error)
	SaveSettings(ctx context.Context, settings domain.GameSettings) error
}

// ActivityRepository loads activities (from cache/backing store).
type ActivityRepository interface {
	GetActivity(ctx context.Context, activityID int64) (domain.Activity, error)
}

// ProgressStore persists profiles and attempts.
type ProgressStore interface {
	// EnsureProfile returns the user's profile, creating it with starting resources when missing.
	EnsureProfile(ctx context.Context, userID int64) (domain.StudentProfile, error)
	CountAttempts(ctx context.Context, userID, activityID int64) (int, error)
	// RunAttempt runs fn in one atomic unit scoped to (user, activity). Concurrent units for the
	// same user are serialized. Nothing fn wrote is kept when it returns an error.
	RunAttempt(ctx context.Context, userID, activityID int64, fn func(ctx context.Context, tx AttemptTx) error) error
}

// AttemptTx is the view of the store inside RunAttempt.
type AttemptTx interface {
	CountAttempts(ctx context.Context) (int, error)
	// LockProfile ensures and locks the profile for the rest of the unit.
	LockProfile(ctx context.Context) (domain.StudentProfile, error)
	SaveProfile(ctx context.Context, profile domain.StudentProfile) error
	InsertAttempt(ctx context.Context, attempt *domain.AttemptRecord) error
}

// ResultMailbox holds the latest result per user until it is read once.
type ResultMailbox interface {
	Put(ctx context.Context, userID int64, result domain.Result) error
	// Take returns and clears the stored result. ok is false when the slot is empty.
	Take(ctx context.Context, userID int64) (result domain.Result, ok bool, err error)
}

// ProgressionService grades attempts and advances student progression.
type ProgressionService struct {
	settings   SettingsRepository
	activities ActivityRepository
	store      ProgressStore
	results    ResultMailbox
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option customizes a ProgressionService.
type Option func(*ProgressionService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *ProgressionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ProgressionService) { s.metrics = m }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ProgressionService) { s.now = now }
}

func NewProgressionService(settings SettingsRepository, activities ActivityRepository, store ProgressStore, results ResultMailbox, opts ...Option) *ProgressionService {
	s := &ProgressionService{
		settings:   settings,
		activities: activities,
		store:      store,
		results:    results,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the current game settings.
func (s *ProgressionService) Settings(ctx context.Context) (domain.GameSettings, error) {
	settings, err := s.settings.EnsureSettings(ctx)
	if err != nil {
		return domain.GameSettings{}, fmt.Errorf("%w: ensure settings: %w", domain.ErrPersistence, err)
	}
	return settings, nil
}

// EnsureProfile returns the student's profile, creating it on first access.
func (s *ProgressionService) EnsureProfile(ctx context.Context, userID int64) (domain.StudentProfile, error) {
	if userID <= 0 {
		return domain.StudentProfile{}, domain.ErrInvalidUser
	}
	profile, err := s.store.EnsureProfile(ctx, userID)
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("%w: ensure profile: %w", domain.ErrPersistence, err)
	}
	return profile, nil
}

// LoadAttemptView gathers what the pre-submission screen shows. A blocked activity can still be viewed.
func (s *ProgressionService) LoadAttemptView(ctx context.Context, userID, activityID int64) (domain.AttemptView, error) {
	if userID <= 0 {
		return domain.AttemptView{}, domain.ErrInvalidUser
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return domain.AttemptView{}, err
	}
	activity, err := s.loadActivity(ctx, activityID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	used, err := s.store.CountAttempts(ctx, userID, activityID)
	if err != nil {
		return domain.AttemptView{}, fmt.Errorf("%w: count attempts: %w", domain.ErrPersistence, err)
	}

	limit := activity.EffectiveLimit(settings)
	return domain.AttemptView{
		Activity:     activity,
		Content:      domain.ParseContent(activity.ContentJSON),
		AttemptsUsed: used,
		AttemptsLeft: attemptsLeft(limit, used),
		AttemptLimit: limit,
		Blocked:      limit != nil && used >= *limit,
	}, nil
}

// GradeAttempt grades a submission, applies its effects to the student's profile and records the attempt.
// It returns domain.ErrAttemptLimitReached without writing anything when the limit is exhausted.
// answers maps question index ("0", "1", ...) to the selected option key.
func (s *ProgressionService) GradeAttempt(ctx context.Context, userID, activityID int64, answers map[string]string) (domain.Result, error) {
	if userID <= 0 {
		return domain.Result{}, domain.ErrInvalidUser
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	activity, err := s.loadActivity(ctx, activityID)
	if err != nil {
		return domain.Result{}, err
	}

	limit := activity.EffectiveLimit(settings)
	outcome := Grade(activity, domain.ParseContent(activity.ContentJSON), answers)
	answersJSON, err := json.Marshal(outcome.Answers)
	if err != nil {
		return domain.Result{}, fmt.Errorf("encode answers: %w", err)
	}

	startedAt := s.now()
	var result domain.Result
	err = s.store.RunAttempt(ctx, userID, activityID, func(ctx context.Context, tx AttemptTx) error {
		used, err := tx.CountAttempts(ctx)
		if err != nil {
			return err
		}
		if limit != nil && used >= *limit {
			return domain.ErrAttemptLimitReached
		}

		profile, err := tx.LockProfile(ctx)
		if err != nil {
			return err
		}
		profile.ApplyDeltas(outcome.DeltaCredit, outcome.DeltaCash, outcome.DeltaEnergy)
		levelUps := profile.GainXP(outcome.XP, settings)

		now := s.now()
		profile.UpdatedAt = now
		attempt := &domain.AttemptRecord{
			UserID:      userID,
			ActivityID:  activityID,
			Score:       float64(outcome.Score),
			AnswersJSON: string(answersJSON),
			StartedAt:   startedAt,
			EndedAt:     now,
		}
		if err := tx.InsertAttempt(ctx, attempt); err != nil {
			return err
		}
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}

		result = domain.Result{
			ActivityID:   activity.ID,
			Title:        activity.Title,
			Score:        outcome.Score,
			XP:           outcome.XP,
			DeltaCredit:  outcome.DeltaCredit,
			DeltaCash:    outcome.DeltaCash,
			DeltaEnergy:  outcome.DeltaEnergy,
			LevelUps:     levelUps,
			AttemptsLeft: attemptsLeft(limit, used+1),
		}
		return nil
	})
	if errors.Is(err, domain.ErrAttemptLimitReached) {
		s.logger.Warn("attempt limit reached",
			zap.Int64("user_id", userID),
			zap.Int64("activity_id", activityID))
		s.metrics.AttemptBlocked()
		return domain.Result{}, err
	}
	if err != nil {
		s.logger.Error("grading attempt failed",
			zap.Int64("user_id", userID),
			zap.Int64("activity_id", activityID),
			zap.Error(err))
		s.metrics.AttemptFailed()
		return domain.Result{}, fmt.Errorf("%w: record attempt: %w", domain.ErrPersistence, err)
	}

	s.logger.Info("attempt graded",
		zap.Int64("user_id", userID),
		zap.Int64("activity_id", activityID),
		zap.Int("score", result.Score),
		zap.Int("xp", result.XP),
		zap.Int("level_ups", result.LevelUps))
	s.metrics.AttemptGraded(result.LevelUps)

	// The attempt is committed; a lost handoff only costs the result screen.
	if err := s.results.Put(ctx, userID, result); err != nil {
		s.logger.Warn("store result handoff",
			zap.Int64("user_id", userID),
			zap.Int64("activity_id", activityID),
			zap.Error(err))
	}
	return result, nil
}

// ConsumeLastResult pops the user's latest result. ok is false when there is none or it belongs to
// another activity; either way the slot is cleared and the caller should show its fallback view.
func (s *ProgressionService) ConsumeLastResult(ctx context.Context, userID, activityID int64) (domain.Result, bool, error) {
	if userID <= 0 {
		return domain.Result{}, false, domain.ErrInvalidUser
	}
	result, ok, err := s.results.Take(ctx, userID)
	if err != nil {
		return domain.Result{}, false, fmt.Errorf("take result: %w", err)
	}
	if !ok || result.ActivityID != activityID {
		return domain.Result{}, false, nil
	}
	return result, true, nil
}

func (s *ProgressionService) loadActivity(ctx context.Context, activityID int64) (domain.Activity, error) {
	activity, err := s.activities.GetActivity(ctx, activityID)
	if errors.Is(err, domain.ErrActivityNotFound) {
		return domain.Activity{}, err
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("%w: load activity: %w", domain.ErrPersistence, err)
	}
	return activity, nil
}

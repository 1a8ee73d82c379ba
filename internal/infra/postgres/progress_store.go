package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"econquest-progress-service/internal/app"
	"econquest-progress-service/internal/domain"
	"github.com/uptrace/bun"
)

// ProgressStore persists profiles and attempts with bun.
// RunAttempt locks the student's profile row first, so units for one user run one after another
// and the attempt count they read cannot go stale before the insert.
type ProgressStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db, clock: time.Now}
}

func (s *ProgressStore) EnsureProfile(ctx context.Context, userID int64) (domain.StudentProfile, error) {
	row, err := ensureProfile(ctx, s.db, userID, s.clock(), false)
	if err != nil {
		return domain.StudentProfile{}, err
	}
	return row.toDomain(), nil
}

func (s *ProgressStore) CountAttempts(ctx context.Context, userID, activityID int64) (int, error) {
	return countAttempts(ctx, s.db, userID, activityID)
}

func (s *ProgressStore) RunAttempt(ctx context.Context, userID, activityID int64, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row, err := ensureProfile(ctx, tx, userID, s.clock(), true)
		if err != nil {
			return err
		}
		return fn(ctx, &attemptTx{tx: tx, userID: userID, activityID: activityID, profile: row})
	})
}

type attemptTx struct {
	tx         bun.Tx
	userID     int64
	activityID int64
	profile    profileRow
}

func (t *attemptTx) CountAttempts(ctx context.Context) (int, error) {
	return countAttempts(ctx, t.tx, t.userID, t.activityID)
}

func (t *attemptTx) LockProfile(_ context.Context) (domain.StudentProfile, error) {
	return t.profile.toDomain(), nil
}

func (t *attemptTx) SaveProfile(ctx context.Context, profile domain.StudentProfile) error {
	row := newProfileRow(profile)
	row.ID = t.profile.ID
	row.UserID = t.userID
	row.CreatedAt = t.profile.CreatedAt
	_, err := t.tx.NewUpdate().
		Model(&row).
		Column("credit_score", "cash_balance", "salary_monthly", "has_car", "car_payment_monthly", "level", "xp", "energy", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	t.profile = row
	return nil
}

func (t *attemptTx) InsertAttempt(ctx context.Context, attempt *domain.AttemptRecord) error {
	row := attemptRow{
		ActivityID:  attempt.ActivityID,
		UserID:      attempt.UserID,
		AnswersJSON: attempt.AnswersJSON,
		Score:       attempt.Score,
		StartedAt:   attempt.StartedAt,
		EndedAt:     attempt.EndedAt,
	}
	if _, err := t.tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	attempt.ID = row.ID
	return nil
}

// ensureProfile creates the profile row when missing and reads it back, optionally locking it.
func ensureProfile(ctx context.Context, db bun.IDB, userID int64, now time.Time, lock bool) (profileRow, error) {
	fresh := newProfileRow(domain.NewStudentProfile(userID, now))
	if _, err := db.NewInsert().
		Model(&fresh).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx); err != nil {
		return profileRow{}, fmt.Errorf("create profile: %w", err)
	}

	var row profileRow
	q := db.NewSelect().Model(&row).Where("user_id = ?", userID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return profileRow{}, fmt.Errorf("load profile: %w", err)
	}
	return row, nil
}

func countAttempts(ctx context.Context, db bun.IDB, userID, activityID int64) (int, error) {
	n, err := db.NewSelect().
		Model((*attemptRow)(nil)).
		Where("user_id = ?", userID).
		Where("activity_id = ?", activityID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

package postgres

import (
	"time"

	"econquest-progress-service/internal/domain"
	"github.com/uptrace/bun"
)

type settingsRow struct {
	bun.BaseModel `bun:"table:game_settings"`

	ID                 int64     `bun:"id,pk"`
	XPBase             int       `bun:"xp_base,notnull"`
	XPGrowth           int       `bun:"xp_growth,notnull"`
	MaxAttemptsDefault *int      `bun:"max_attempts_default"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r settingsRow) toDomain() domain.GameSettings {
	return domain.GameSettings{
		ID:                 r.ID,
		XPBase:             r.XPBase,
		XPGrowth:           r.XPGrowth,
		MaxAttemptsDefault: r.MaxAttemptsDefault,
		UpdatedAt:          r.UpdatedAt,
	}
}

type moduleRow struct {
	bun.BaseModel `bun:"table:modules"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Title       string `bun:"title,notnull"`
	Summary     string `bun:"summary,nullzero"`
	Level       *int   `bun:"level"`
	XPReward    *int   `bun:"xp_reward"`
	IsPublished bool   `bun:"is_published"`
}

type activityRow struct {
	bun.BaseModel `bun:"table:activities"`

	ID           int64  `bun:"id,pk,autoincrement"`
	ModuleID     int64  `bun:"module_id,notnull"`
	Title        string `bun:"title"`
	Type         string `bun:"type,notnull"`
	Position     int    `bun:"position"`
	IsPublished  bool   `bun:"is_published"`
	MaxPoints    *int   `bun:"max_points"`
	AttemptLimit *int   `bun:"attempt_limit"`
	DefaultXP    *int   `bun:"default_xp"`
	ContentJSON  string `bun:"content_json"`
}

type profileRow struct {
	bun.BaseModel `bun:"table:student_profiles"`

	ID                int64     `bun:"id,pk,autoincrement"`
	UserID            int64     `bun:"user_id,notnull,unique"`
	CreditScore       *int      `bun:"credit_score"`
	CashBalance       *float64  `bun:"cash_balance"`
	SalaryMonthly     float64   `bun:"salary_monthly,notnull"`
	HasCar            bool      `bun:"has_car,notnull"`
	CarPaymentMonthly float64   `bun:"car_payment_monthly,notnull"`
	Level             int       `bun:"level,notnull"`
	XP                int       `bun:"xp,notnull"`
	Energy            *int      `bun:"energy"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newProfileRow(p domain.StudentProfile) profileRow {
	return profileRow{
		UserID:            p.UserID,
		CreditScore:       p.CreditScore,
		CashBalance:       p.CashBalance,
		SalaryMonthly:     p.SalaryMonthly,
		HasCar:            p.HasCar,
		CarPaymentMonthly: p.CarPaymentMonthly,
		Level:             p.Level,
		XP:                p.XP,
		Energy:            p.Energy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (r profileRow) toDomain() domain.StudentProfile {
	return domain.StudentProfile{
		UserID:            r.UserID,
		CreditScore:       r.CreditScore,
		CashBalance:       r.CashBalance,
		SalaryMonthly:     r.SalaryMonthly,
		HasCar:            r.HasCar,
		CarPaymentMonthly: r.CarPaymentMonthly,
		Level:             r.Level,
		XP:                r.XP,
		Energy:            r.Energy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID          int64     `bun:"id,pk,autoincrement"`
	ActivityID  int64     `bun:"activity_id,notnull"`
	UserID      int64     `bun:"user_id,notnull"`
	AnswersJSON string    `bun:"answers_json,notnull"`
	Score       float64   `bun:"score,notnull"`
	StartedAt   time.Time `bun:"started_at,notnull"`
	EndedAt     time.Time `bun:"ended_at,nullzero"`
}

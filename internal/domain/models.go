package domain

import (
	"strings"
	"time"
)

// Activity kinds graded option by option. Anything else is graded as a fixed-score text activity.
const (
	KindQuiz     = "quiz"
	KindScenario = "scenario"
	KindMCQSim   = "mcq_sim"
	KindText     = "text"
)

// Fallback XP when neither the activity nor its content names a reward.
const DefaultXPReward = 25

// GameSettings holds the global leveling and attempt knobs. One logical row exists (ID 1).
type GameSettings struct {
	ID                 int64     `json:"id"`
	XPBase             int       `json:"xpBase"`
	XPGrowth           int       `json:"xpGrowth"`
	MaxAttemptsDefault *int      `json:"maxAttemptsDefault"` // nil means unlimited
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultGameSettings returns the values used when the settings row is first created.
func DefaultGameSettings() GameSettings {
	limit := 3
	return GameSettings{
		ID:                 1,
		XPBase:             100,
		XPGrowth:           50,
		MaxAttemptsDefault: &limit,
	}
}

// XPNeeded returns the experience required to leave the given level.
// The result is floored at 1 so the level-up loop always makes progress.
func (s GameSettings) XPNeeded(level int) int {
	if level < 1 {
		level = 1
	}
	need := s.XPBase + (level-1)*s.XPGrowth
	if need < 1 {
		return 1
	}
	return need
}

// Activity is a gradable unit of content inside a module.
type Activity struct {
	ID           int64  `json:"id"`
	ModuleID     int64  `json:"moduleId"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Position     int    `json:"position"`
	IsPublished  bool   `json:"isPublished"`
	MaxPoints    *int   `json:"maxPoints"`
	AttemptLimit *int   `json:"attemptLimit"`
	DefaultXP    *int   `json:"defaultXp"`
	ContentJSON  string `json:"contentJson"`
}

// Kind normalizes the free-text activity type.
func (a Activity) Kind() string {
	kind := strings.ToLower(strings.TrimSpace(a.Type))
	if kind == "" {
		return KindText
	}
	return kind
}

// IsMultipleChoice reports whether answers are graded per question option.
func (a Activity) IsMultipleChoice() bool {
	switch a.Kind() {
	case KindQuiz, KindScenario, KindMCQSim:
		return true
	}
	return false
}

// EffectiveLimit resolves the attempt limit: the activity override, else the global default.
// nil means unlimited.
func (a Activity) EffectiveLimit(s GameSettings) *int {
	if a.AttemptLimit != nil {
		return a.AttemptLimit
	}
	return s.MaxAttemptsDefault
}

// StudentProfile is the per-user mutable game state.
// CreditScore, CashBalance and Energy may be null in storage; they are only defaulted when an effect touches them.
type StudentProfile struct {
	UserID            int64     `json:"userId"`
	CreditScore       *int      `json:"creditScore"`
	CashBalance       *float64  `json:"cashBalance"`
	SalaryMonthly     float64   `json:"salaryMonthly"`
	HasCar            bool      `json:"hasCar"`
	CarPaymentMonthly float64   `json:"carPaymentMonthly"`
	Level             int       `json:"level"`
	XP                int       `json:"xp"`
	Energy            *int      `json:"energy"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewStudentProfile builds a profile with starting resources.
func NewStudentProfile(userID int64, now time.Time) StudentProfile {
	credit, cash, energy := 650, 500.0, 100
	return StudentProfile{
		UserID:        userID,
		CreditScore:   &credit,
		CashBalance:   &cash,
		SalaryMonthly: 1200,
		Level:         1,
		XP:            0,
		Energy:        &energy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AttemptRecord is one graded submission. Records are never updated.
type AttemptRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	ActivityID  int64     `json:"activityId"`
	Score       float64   `json:"score"`
	AnswersJSON string    `json:"answersJson"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
}

// Result is the summary handed from the grading step to the result view.
type Result struct {
	ActivityID   int64   `json:"activityId"`
	Title        string  `json:"title"`
	Score        int     `json:"score"`
	XP           int     `json:"xp"`
	DeltaCredit  int     `json:"deltaCredit"`
	DeltaCash    float64 `json:"deltaCash"`
	DeltaEnergy  int     `json:"deltaEnergy"`
	LevelUps     int     `json:"levelUps"`
	AttemptsLeft *int    `json:"attemptsLeft"` // nil means unlimited
}

// AttemptView is what the pre-submission screen needs.
type AttemptView struct {
	Activity     Activity        `json:"activity"`
	Content      ActivityContent `json:"content"`
	AttemptsUsed int             `json:"attemptsUsed"`
	AttemptsLeft *int            `json:"attemptsLeft"`
	AttemptLimit *int            `json:"attemptLimit"`
	Blocked      bool            `json:"blocked"`
}

// Module groups activities into a unit of study.
type Module struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Level       *int   `json:"level"`
	XPReward    *int   `json:"xpReward"`
	IsPublished bool   `json:"isPublished"`
}

// ModuleProgress is one row of the module listing for a student.
// AttemptCount counts every attempt the student made on the module's activities, retries included.
type ModuleProgress struct {
	Module        Module `json:"module"`
	ActivityCount int    `json:"activityCount"`
	AttemptCount  int    `json:"attemptCount"`
	Percent       int    `json:"percent"`
}

// ModuleDetail is a module with its published activities in display order.
type ModuleDetail struct {
	Module     Module     `json:"module"`
	Activities []Activity `json:"activities"`
}

// ProgressPercent is attempts*100/activities truncated, 0 for an empty module, capped at 100.
func ProgressPercent(attempts, activities int) int {
	if activities <= 0 || attempts <= 0 {
		return 0
	}
	pct := attempts * 100 / activities
	if pct > 100 {
		return 100
	}
	return pct
}

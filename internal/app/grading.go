package app

import (
	"strconv"

	"econquest-progress-service/internal/domain"
)

// Outcome is the aggregated effect of one submission before it touches a profile.
type Outcome struct {
	Score       int
	XP          int
	DeltaCredit int
	DeltaCash   float64
	DeltaEnergy int
	Answers     map[string]string
}

// Grade scores a submission against parsed content.
// Multiple-choice kinds sum the effects of matched options; other kinds award the fixed max points.
func Grade(activity domain.Activity, content domain.ActivityContent, answers map[string]string) Outcome {
	out := Outcome{Answers: make(map[string]string)}
	var xp *int

	if activity.IsMultipleChoice() {
		for idx, question := range content.Questions {
			key := strconv.Itoa(idx)
			selected, ok := answers[key]
			if !ok {
				continue
			}
			out.Answers[key] = selected

			for _, opt := range question.Options {
				if !opt.HasKey || opt.Key != selected {
					continue
				}
				out.Score += opt.Points
				out.DeltaCredit += opt.DeltaCredit
				out.DeltaCash += opt.DeltaCash
				out.DeltaEnergy += opt.DeltaEnergy
				if xp == nil && opt.XP != nil {
					v := *opt.XP
					xp = &v
				}
				break
			}
		}
	} else {
		out.Score = valueOr(activity.MaxPoints, 0)
	}

	if xp == nil {
		xp = firstSet(activity.DefaultXP, content.XPReward, activity.MaxPoints)
	}
	out.XP = valueOr(xp, domain.DefaultXPReward)
	return out
}

func firstSet(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// attemptsLeft reports remaining submissions, nil when unlimited.
func attemptsLeft(limit *int, used int) *int {
	if limit == nil {
		return nil
	}
	left := *limit - used
	if left < 0 {
		left = 0
	}
	return &left
}

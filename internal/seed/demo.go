// Package seed holds the demo catalog used by the memory backend and the seed command.
package seed

import (
	"econquest-progress-service/internal/domain"
)

// Module is a module plus the activities it owns, in display order.
type Module struct {
	Title       string
	Summary     string
	Level       int
	XPReward    int
	IsPublished bool
	Activities  []domain.Activity
}

// DemoModule returns the "Budgeting Básico" module. Activity IDs and module IDs are left zero.
func DemoModule() Module {
	maxPoints := 100
	return Module{
		Title:       "Budgeting Básico",
		Summary:     "Primeros pasos para organizar un presupuesto mensual.",
		Level:       1,
		XPReward:    50,
		IsPublished: true,
		Activities: []domain.Activity{
			{
				Title:       "Tu primer sueldo",
				Type:        domain.KindScenario,
				Position:    1,
				IsPublished: true,
				MaxPoints:   &maxPoints,
				ContentJSON: `{
  "questions": [
    {
      "prompt": "Tienes $1000 al mes. ¿Qué haces primero?",
      "options": [
        {"key": "a", "text": "Separar 10% ahorro y pagar renta", "points": 15, "delta_cash": 100, "delta_credit": 5, "xp": 30},
        {"key": "b", "text": "Comprar un celular nuevo a crédito", "points": -10, "delta_cash": -300, "delta_credit": -20, "delta_energy": 10, "xp": 5}
      ]
    }
  ],
  "xp_reward": 25
}`,
			},
			{
				Title:       "Gastos fijos",
				Type:        domain.KindQuiz,
				Position:    2,
				IsPublished: true,
				MaxPoints:   &maxPoints,
				ContentJSON: `{
  "questions": [
    {
      "prompt": "¿Qué es un gasto fijo?",
      "options": [
        {"key": "a", "text": "Pago de renta mensual", "points": 10, "delta_credit": 2},
        {"key": "b", "text": "Comer afuera", "points": -5, "delta_cash": -25, "delta_energy": -5}
      ]
    }
  ]
}`,
			},
		},
	}
}

// Record returns the module row under the given ID.
func (m Module) Record(id int64) domain.Module {
	level, reward := m.Level, m.XPReward
	return domain.Module{
		ID:          id,
		Title:       m.Title,
		Summary:     m.Summary,
		Level:       &level,
		XPReward:    &reward,
		IsPublished: m.IsPublished,
	}
}

// Activities returns the demo activities numbered from 1 under the given module, for in-process catalogs.
func Activities(moduleID int64) []domain.Activity {
	demo := DemoModule()
	out := make([]domain.Activity, len(demo.Activities))
	for i, a := range demo.Activities {
		a.ID = int64(i + 1)
		a.ModuleID = moduleID
		out[i] = a
	}
	return out
}

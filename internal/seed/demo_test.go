package seed

import (
	"testing"

	"econquest-progress-service/internal/domain"
)

func TestDemoActivitiesParse(t *testing.T) {
	activities := Activities(3)
	if len(activities) != 2 {
		t.Fatalf("expected 2 demo activities, got %d", len(activities))
	}
	for i, a := range activities {
		if a.ID != int64(i+1) || a.ModuleID != 3 {
			t.Fatalf("unexpected ids for %q: id=%d module=%d", a.Title, a.ID, a.ModuleID)
		}
		if !a.IsMultipleChoice() {
			t.Fatalf("expected %q to be multiple choice", a.Title)
		}
		content := domain.ParseContent(a.ContentJSON)
		if len(content.Questions) != 1 || len(content.Questions[0].Options) != 2 {
			t.Fatalf("unexpected content for %q: %+v", a.Title, content)
		}
		for _, opt := range content.Questions[0].Options {
			if !opt.HasKey || opt.Text == "" {
				t.Fatalf("expected keyed option with text, got %+v", opt)
			}
		}
	}

	scenario := domain.ParseContent(activities[0].ContentJSON)
	if scenario.XPReward == nil || *scenario.XPReward != 25 {
		t.Fatalf("expected scenario xp_reward 25, got %v", scenario.XPReward)
	}
}

func TestDemoModuleLeavesIDsUnset(t *testing.T) {
	for _, a := range DemoModule().Activities {
		if a.ID != 0 || a.ModuleID != 0 {
			t.Fatalf("expected zero ids, got %+v", a)
		}
	}
}

func TestDemoModuleRecord(t *testing.T) {
	m := DemoModule().Record(4)
	if m.ID != 4 || m.Title != "Budgeting Básico" || !m.IsPublished {
		t.Fatalf("unexpected module record: %+v", m)
	}
	if m.XPReward == nil || *m.XPReward != 50 || m.Level == nil || *m.Level != 1 {
		t.Fatalf("expected level and reward copied, got %+v", m)
	}
}

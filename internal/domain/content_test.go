package domain

import "testing"

func TestParseContentMalformedIsEmpty(t *testing.T) {
	cases := []string{
		``,
		`{"questions": [`,
		`not json`,
		`[1, 2, 3]`,
		`"just a string"`,
	}
	for _, raw := range cases {
		content := ParseContent(raw)
		if len(content.Questions) != 0 || content.XPReward != nil {
			t.Fatalf("expected empty content for %q, got %+v", raw, content)
		}
	}
}

func TestParseContentOptions(t *testing.T) {
	raw := `{
		"xp_reward": 40,
		"questions": [
			{"prompt": "Rent first?", "options": [
				{"key": "a", "points": 10, "delta_credit": 15, "delta_cash": -20.5, "delta_energy": -3, "xp": 30},
				{"key": 2, "points": "7", "delta_credit": "oops", "xp": null}
			]}
		]
	}`
	content := ParseContent(raw)

	if content.XPReward == nil || *content.XPReward != 40 {
		t.Fatalf("expected xp_reward 40, got %v", content.XPReward)
	}
	if len(content.Questions) != 1 || len(content.Questions[0].Options) != 2 {
		t.Fatalf("unexpected questions: %+v", content.Questions)
	}

	a := content.Questions[0].Options[0]
	if a.Key != "a" || a.Points != 10 || a.DeltaCredit != 15 || a.DeltaCash != -20.5 || a.DeltaEnergy != -3 {
		t.Fatalf("unexpected option a: %+v", a)
	}
	if a.XP == nil || *a.XP != 30 {
		t.Fatalf("expected xp 30 on option a, got %v", a.XP)
	}

	b := content.Questions[0].Options[1]
	if b.Key != "2" || !b.HasKey {
		t.Fatalf("expected numeric key rendered as \"2\", got %q", b.Key)
	}
	if b.Points != 7 {
		t.Fatalf("expected numeric string points to parse, got %d", b.Points)
	}
	if b.DeltaCredit != 0 {
		t.Fatalf("expected malformed delta_credit to read as zero, got %d", b.DeltaCredit)
	}
	if b.XP != nil {
		t.Fatalf("expected null xp to stay absent, got %v", *b.XP)
	}
}

func TestParseContentKeepsQuestionIndexes(t *testing.T) {
	content := ParseContent(`{"questions": ["bogus", {"options": [{"key": "x", "points": 1}]}]}`)
	if len(content.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(content.Questions))
	}
	if len(content.Questions[0].Options) != 0 {
		t.Fatalf("expected malformed question to have no options")
	}
	if content.Questions[1].Options[0].Key != "x" {
		t.Fatalf("expected second question option x")
	}
}

func TestActivityKindAndLimit(t *testing.T) {
	settings := DefaultGameSettings()
	override := 1

	cases := []struct {
		typ      string
		multi    bool
		limit    *int
		expLimit *int
	}{
		{"quiz", true, nil, settings.MaxAttemptsDefault},
		{"Scenario", true, &override, &override},
		{"mcq_sim", true, nil, settings.MaxAttemptsDefault},
		{"", false, nil, settings.MaxAttemptsDefault},
		{"reading", false, nil, settings.MaxAttemptsDefault},
	}
	for _, tc := range cases {
		a := Activity{Type: tc.typ, AttemptLimit: tc.limit}
		if a.IsMultipleChoice() != tc.multi {
			t.Fatalf("type %q: expected multiple choice=%v", tc.typ, tc.multi)
		}
		if got := a.EffectiveLimit(settings); got != tc.expLimit {
			t.Fatalf("type %q: unexpected limit %v", tc.typ, got)
		}
	}

	unlimited := settings
	unlimited.MaxAttemptsDefault = nil
	if (Activity{Type: "quiz"}).EffectiveLimit(unlimited) != nil {
		t.Fatalf("expected unlimited when neither activity nor settings set a limit")
	}
}

func TestParseContentDropsOutOfRangeNumbers(t *testing.T) {
	content := ParseContent(`{"xp_reward": 1e19, "questions": [{"options": [
		{"key": "a", "points": 1e300, "xp": 1e19, "delta_cash": -2e16, "delta_credit": "9e18"}
	]}]}`)
	if content.XPReward != nil {
		t.Fatalf("expected oversized xp_reward to read as absent, got %d", *content.XPReward)
	}
	opt := content.Questions[0].Options[0]
	if opt.XP != nil || opt.Points != 0 || opt.DeltaCash != 0 || opt.DeltaCredit != 0 {
		t.Fatalf("expected oversized fields to read as absent, got %+v", opt)
	}
}

func TestParseContentKeyRendering(t *testing.T) {
	content := ParseContent(`{"questions": [{"options": [
		{"key": 1.0}, {"key": 1}, {"key": -0}, {"key": true}, {"key": false},
		{"key": 2.5}, {"key": 1e2}, {"key": 1e16}, {"key": 0.00001}, {"key": 12345678901234567890}
	]}]}`)
	want := []string{"1.0", "1", "0", "True", "False", "2.5", "100.0", "1e+16", "1e-05", "12345678901234567890"}
	opts := content.Questions[0].Options
	if len(opts) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(opts))
	}
	for i, w := range want {
		if opts[i].Key != w {
			t.Fatalf("option %d: expected key %q, got %q", i, w, opts[i].Key)
		}
	}
}

func TestParseContentRejectsTrailingData(t *testing.T) {
	content := ParseContent(`{"questions": [{"options": [{"key": "a"}]}]} {"extra": 1}`)
	if len(content.Questions) != 0 {
		t.Fatalf("expected trailing data to make content empty, got %+v", content)
	}
}

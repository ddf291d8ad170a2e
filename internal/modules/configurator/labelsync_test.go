package configurator

import (
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func labelStep() *domain.Step {
	return bottleTree()[0].Steps[3]
}

// applyPlan runs the planner like the reactor does until it asks for nothing.
func applyPlan(t *testing.T, st *domain.Step, onLabel bool, slug string) []int {
	t.Helper()
	var picks []int
	for i := 0; i < 5; i++ {
		id, ok := PlanLabelSync(st, onLabel, slug)
		if !ok {
			return picks
		}
		picks = append(picks, id)
		for _, o := range st.Attributes[0].Options {
			o.Selected = o.ID == id
		}
	}
	t.Fatalf("label sync did not settle: %v", picks)
	return nil
}

func selectedCount(st *domain.Step) int {
	n := 0
	for _, o := range st.Attributes[0].Options {
		if o.Selected {
			n++
		}
	}
	return n
}

func TestLabelSyncOnLabelStepSelectsMatch(t *testing.T) {
	st := labelStep()
	picks := applyPlan(t, st, true, "polo")
	if len(picks) != 1 || picks[0] != 4002 {
		t.Fatalf("expected one pick of 4002, got %v", picks)
	}
	if selectedCount(st) != 1 {
		t.Fatalf("expected exactly one selected option")
	}
	if again := applyPlan(t, st, true, "polo"); len(again) != 0 {
		t.Fatalf("expected idempotent rerun, got %v", again)
	}
}

func TestLabelSyncMatchByName(t *testing.T) {
	st := step(1, "Labels", attr(1, "Label Design",
		opt(1, domain.NoSelectionName, "", true),
		opt(2, "Magnum", "", false),
	))
	if id, ok := PlanLabelSync(st, true, "magnum"); !ok || id != 2 {
		t.Fatalf("expected name match, got %d %v", id, ok)
	}
}

func TestLabelSyncMatchByContainedSlug(t *testing.T) {
	st := step(1, "Labels", attr(1, "Label Design",
		opt(1, domain.NoSelectionName, "", true),
		opt(2, "Front", "x|antica_label_v2", false),
	))
	if id, ok := PlanLabelSync(st, true, "antica"); !ok || id != 2 {
		t.Fatalf("expected code-contains match, got %d %v", id, ok)
	}
}

func TestLabelSyncFallsBackToFirstRealOption(t *testing.T) {
	st := labelStep()
	picks := applyPlan(t, st, true, "magnum")
	if len(picks) != 1 || picks[0] != 4001 {
		t.Fatalf("expected first real option, got %v", picks)
	}
}

func TestLabelSyncOnlyNoSelection(t *testing.T) {
	st := step(1, "Labels", attr(1, "Label Design", opt(1, domain.NoSelectionName, "", false)))
	if id, ok := PlanLabelSync(st, true, "antica"); !ok || id != 1 {
		t.Fatalf("expected No Selection to be selected, got %d %v", id, ok)
	}
	st.Attributes[0].Options[0].Selected = true
	if _, ok := PlanLabelSync(st, true, "antica"); ok {
		t.Fatalf("expected nothing once No Selection is active")
	}
}

func TestLabelSyncOffLabelStepHidesArtwork(t *testing.T) {
	st := labelStep()
	applyPlan(t, st, true, "antica")

	picks := applyPlan(t, st, false, "antica")
	if len(picks) != 1 || picks[0] != 4000 {
		t.Fatalf("expected switch back to No Selection, got %v", picks)
	}
	if selectedCount(st) != 1 {
		t.Fatalf("expected exactly one selected option")
	}
}

func TestLabelSyncOffLabelStepWithNothingSelected(t *testing.T) {
	st := labelStep()
	for _, o := range st.Attributes[0].Options {
		o.Selected = false
	}
	if _, ok := PlanLabelSync(st, false, "antica"); ok {
		t.Fatalf("expected no selection when nothing is active")
	}
}

func TestLabelSyncIgnoresLaterAttributes(t *testing.T) {
	st := step(1, "Labels",
		attr(1, "Label Design", opt(1, domain.NoSelectionName, "", true)),
		attr(2, "Extra", opt(2, "Antica", "x|antica", false)),
	)
	if _, ok := PlanLabelSync(st, true, "antica"); ok {
		t.Fatalf("expected only the first attribute to be considered")
	}
	if _, ok := PlanLabelSync(nil, true, "antica"); ok {
		t.Fatalf("expected nil step to be a no-op")
	}
}

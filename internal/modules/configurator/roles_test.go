package configurator

import (
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func TestClassifyPriority(t *testing.T) {
	c := NewClassifier(testKnown)
	cases := []struct {
		name string
		step *domain.Step
		want domain.Role
	}{
		{"label by code segment", step(1, "x", attr(1, "Style", opt(1, "Wax", "labels|antica_label_front", false))), domain.RoleLabel},
		{"label by attribute name", step(1, "x", attr(1, "Your Design", opt(1, "Pink Gin", "", false))), domain.RoleLabel},
		{"closure beats liquid", step(1, "x", attr(1, "Top", opt(1, "Pink Gin", "", false), opt(2, "Oak Wood", "", false))), domain.RoleClosure},
		{"closure known name", step(1, "x", attr(1, "Top", opt(1, "No Wax Seal", "", false))), domain.RoleClosure},
		{"closure attribute name", step(1, "x", attr(1, "Closure Colour", opt(1, "Red", "", false))), domain.RoleClosure},
		{"liquid keyword", step(1, "x", attr(1, "Spirit", opt(1, "Liquid Gold", "", false))), domain.RoleLiquid},
		{"liquid beats bottle", step(1, "x", attr(1, "Spirit", opt(1, "Bottle Gin", "", false))), domain.RoleLiquid},
		{"bottle known name", step(1, "x", attr(1, "Shape", opt(1, "Polo", "", false))), domain.RoleBottle},
		{"bottle keyword", step(1, "x", attr(1, "Shape", opt(1, "Tall Bottle", "", false))), domain.RoleBottle},
		{"unknown", step(1, "x", attr(1, "Shape", opt(1, "Square", "", false))), domain.RoleUnknown},
		{"no attributes", step(1, "Labels"), domain.RoleUnknown},
		{"no options despite label attribute", step(1, "x", attr(1, "Label Design")), domain.RoleUnknown},
		{"nil step", nil, domain.RoleUnknown},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.step); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyKnownNamesAreCaseInsensitive(t *testing.T) {
	c := NewClassifier(KnownNames{Bottles: []string{"  ANTICA "}})
	if got := c.Classify(step(1, "x", attr(1, "Shape", opt(1, "antica", "", false)))); got != domain.RoleBottle {
		t.Fatalf("expected bottle, got %s", got)
	}
}

func TestAssignIsStableAndExclusive(t *testing.T) {
	c := NewClassifier(testKnown)
	steps := bottleTree()[0].Steps
	first := c.Assign(steps)
	second := c.Assign(steps)

	if first.StepIDs()[domain.RoleBottle] != 10 || first.StepIDs()[domain.RoleLiquid] != 20 ||
		first.StepIDs()[domain.RoleClosure] != 30 || first.StepIDs()[domain.RoleLabel] != 40 {
		t.Fatalf("unexpected assignment: %+v", first.StepIDs())
	}
	if len(first.StepIDs()) != len(second.StepIDs()) {
		t.Fatalf("assignment changed between runs")
	}
	for role, id := range first.StepIDs() {
		if second.StepIDs()[role] != id {
			t.Fatalf("role %s moved from %d to %d", role, id, second.StepIDs()[role])
		}
	}
	seen := map[int]domain.Role{}
	for role, id := range first.StepIDs() {
		if prev, dup := seen[id]; dup {
			t.Fatalf("step %d claimed by %s and %s", id, prev, role)
		}
		seen[id] = role
	}
}

func TestAssignFirstStepWins(t *testing.T) {
	c := NewClassifier(testKnown)
	steps := []*domain.Step{
		step(1, "Gin A", attr(1, "Spirit", opt(1, "Pink Gin", "", false))),
		step(2, "Gin B", attr(2, "Spirit", opt(2, "London Dry Gin", "", false))),
	}
	m := c.Assign(steps)
	if m.Liquid == nil || m.Liquid.ID != 1 {
		t.Fatalf("expected first liquid step to win, got %+v", m.Liquid)
	}
	if m.RoleOf(2) != domain.RoleUnknown {
		t.Fatalf("expected step 2 unclaimed, got %s", m.RoleOf(2))
	}
}

func TestAssignLabelFallsBackToLastStep(t *testing.T) {
	c := NewClassifier(testKnown)
	steps := []*domain.Step{
		step(1, "Bottle", attr(1, "Shape", opt(1, "Antica", "", false))),
		step(2, "Finish", attr(2, "Artwork", opt(2, "Plain", "", false))),
	}
	m := c.Assign(steps)
	if m.Label == nil || m.Label.ID != 2 {
		t.Fatalf("expected last step to take label role, got %+v", m.Label)
	}
}

func TestAssignLabelFallbackSkipsClaimedStep(t *testing.T) {
	c := NewClassifier(testKnown)
	steps := []*domain.Step{
		step(1, "Bottle", attr(1, "Shape", opt(1, "Antica", "", false))),
		step(2, "Gin", attr(2, "Spirit", opt(2, "Pink Gin", "", false))),
	}
	m := c.Assign(steps)
	if m.Label != nil {
		t.Fatalf("expected no label step, got %d", m.Label.ID)
	}
	if m.RoleOf(2) != domain.RoleLiquid {
		t.Fatalf("expected step 2 to stay liquid, got %s", m.RoleOf(2))
	}
}

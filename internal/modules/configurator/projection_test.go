package configurator

import (
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func snapshot(p float64, bottle, liquid, closure, label int) domain.OrderSnapshot {
	return domain.OrderSnapshot{
		SKU:   "SS-GIN-70",
		Price: price(p),
		Selections: domain.OrderSelections{
			Bottle:  &domain.Mini{ID: bottle},
			Liquid:  &domain.Mini{ID: liquid},
			Closure: &domain.Mini{ID: closure},
			Label:   &domain.Mini{ID: label},
		},
	}
}

func TestProjectorRepublishesOnPriceChange(t *testing.T) {
	var p Projector
	if !p.Claim(snapshot(10.00, 5, 1, 3, 8)) {
		t.Fatalf("expected first snapshot to publish")
	}
	if p.Claim(snapshot(10.00, 5, 1, 3, 8)) {
		t.Fatalf("expected unchanged snapshot not to publish")
	}
	if !p.Claim(snapshot(12.50, 5, 1, 3, 8)) {
		t.Fatalf("expected price change to publish")
	}
}

func TestProjectorIgnoresClosureChurn(t *testing.T) {
	var p Projector
	p.Claim(snapshot(10.00, 5, 1, 3, 8))
	if p.Claim(snapshot(10.00, 5, 1, 7, 8)) {
		t.Fatalf("expected closure-only change not to publish")
	}
	for _, s := range []domain.OrderSnapshot{
		snapshot(10.00, 9, 1, 7, 8),
		snapshot(10.00, 9, 2, 7, 8),
		snapshot(10.00, 9, 2, 7, 4),
	} {
		if !p.Claim(s) {
			t.Fatalf("expected change to publish: %s", OrderKey(s))
		}
	}
}

func TestProjectorReleaseAllowsRetry(t *testing.T) {
	var p Projector
	s := snapshot(10.00, 5, 1, 3, 8)
	p.Claim(s)
	p.Release()
	if !p.Claim(s) {
		t.Fatalf("expected released snapshot to publish again")
	}
}

func TestBuildSnapshot(t *testing.T) {
	groups := bottleTree()
	selectIn(groups, 9)
	selectIn(groups, 2001)
	selectIn(groups, 3001)
	r := resolutionFor(t, groups)
	designs := domain.LabelDesigns{Front: map[string]any{"id": float64(42)}, Back: map[string]any{"id": "back-1"}}
	meshes := map[string]string{"polo_label_front": "mesh-f"}
	snap := BuildSnapshot(r, testProduct(), price(12.5), designs, func(name string) (string, bool) {
		id, ok := meshes[name]
		return id, ok
	})

	if snap.SKU != "SS-GIN-70" || snap.BottleSlug != "polo" || !snap.Valid {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if snap.Selections.Closure == nil || snap.Selections.Closure.ID != 3001 {
		t.Fatalf("expected closure mini in body, got %+v", snap.Selections.Closure)
	}
	if snap.Selections.FrontDesignID == nil || *snap.Selections.FrontDesignID != "42" {
		t.Fatalf("unexpected front design id: %v", snap.Selections.FrontDesignID)
	}
	if snap.Selections.BackDesignID == nil || *snap.Selections.BackDesignID != "back-1" {
		t.Fatalf("unexpected back design id: %v", snap.Selections.BackDesignID)
	}
	if snap.Mesh.Front == nil || *snap.Mesh.Front != "mesh-f" || snap.Mesh.Back != nil {
		t.Fatalf("unexpected mesh ids: %+v", snap.Mesh)
	}
	if OrderKey(snap) != "SS-GIN-70|12.5|9|2001|4000" {
		t.Fatalf("unexpected order key %q", OrderKey(snap))
	}
}

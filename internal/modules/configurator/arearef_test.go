package configurator

import (
	"encoding/json"
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func TestNormalizeAreaRef(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"int", 7, 7, true},
		{"float", float64(12), 12, true},
		{"fractional float", 1.5, 0, false},
		{"json number", json.Number("33"), 33, true},
		{"numeric string", "501", 501, true},
		{"leading digits", " 42px", 42, true},
		{"signed string", "-3", -3, true},
		{"junk string", "front", 0, false},
		{"empty list", []any{}, 0, false},
		{"first resolvable wins", []any{nil, "x", float64(8), float64(9)}, 8, true},
		{"nested list", []any{[]any{nil, "11"}}, 11, true},
		{"object id", map[string]any{"id": float64(5)}, 5, true},
		{"object key order", map[string]any{"sideId": float64(2), "areaId": float64(1)}, 1, true},
		{"object without keys", map[string]any{"name": "front"}, 0, false},
		{"int slice", []int{4, 5}, 4, true},
		{"unsupported", struct{}{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := NormalizeAreaRef(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: expected (%d, %v), got (%d, %v)", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}

func TestItemUnmarshalCollectsAreaRefs(t *testing.T) {
	var it domain.Item
	raw := `{"guid":"g1","deleted":false,"area":{"id":"77"},"areaId":null,"sides":[3]}`
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.GUID != "g1" || len(it.AreaRefs) != 3 {
		t.Fatalf("unexpected item: %+v", it)
	}
	id, ok := ResolveItemAreaID(&it)
	if !ok || id != 77 {
		t.Fatalf("expected area 77, got %d %v", id, ok)
	}
	if _, ok := ResolveItemAreaID(nil); ok {
		t.Fatalf("expected nil item to resolve nothing")
	}
}

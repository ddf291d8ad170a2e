package configurator

import (
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Antica":          "antica",
		"  London Dry  ":  "london_dry",
		"Antiça Réserve!": "antica_reserve",
		"mid-size_70cl":   "mid-size_70cl",
		"":                "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSlugFromOption(t *testing.T) {
	if got := SlugFromOption(&domain.Option{Name: "Polo Bottle", Code: "bottles|round|Polo"}); got != "polo" {
		t.Fatalf("expected last code segment, got %q", got)
	}
	if got := SlugFromOption(&domain.Option{Name: "Polo Bottle", Code: "bottles|!!"}); got != "polo_bottle" {
		t.Fatalf("expected name fallback, got %q", got)
	}
	if got := SlugFromOption(nil); got != "" {
		t.Fatalf("expected empty slug for nil option, got %q", got)
	}
}

func TestTitleizeAndFormatList(t *testing.T) {
	if got := Titleize("antica_reserve"); got != "Antica Reserve" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := FormatList([]string{"bottle"}); got != "bottle" {
		t.Fatalf("unexpected list %q", got)
	}
	if got := FormatList([]string{"a", "b", "c"}); got != "a, b, and c" {
		t.Fatalf("unexpected list %q", got)
	}
}

func TestSyntheticIDFromSlug(t *testing.T) {
	if got := SyntheticIDFromSlug("antica"); got != -1412792512 {
		t.Fatalf("unexpected synthetic id %d", got)
	}
	if got := SyntheticIDFromSlug(""); got != -1 {
		t.Fatalf("expected -1 for empty slug, got %d", got)
	}
	for _, slug := range []string{"polo", "antica", "magnum", "é"} {
		if id := SyntheticIDFromSlug(slug); id >= 0 || id != SyntheticIDFromSlug(slug) {
			t.Fatalf("synthetic id for %q must be negative and stable, got %d", slug, id)
		}
	}
}

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.DefaultBottleSlug != "antica" {
		t.Fatalf("expected antica default slug, got %q", c.DefaultBottleSlug)
	}
	p, err := c.Product("gin-70cl")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p.SKU != "SS-GIN-70" {
		t.Fatalf("unexpected sku %q", p.SKU)
	}
	if _, err := c.Product("vodka"); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
}

func TestDefaultCatalogClassifiesEveryRole(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	p, _ := c.Product("gin-70cl")
	groups := p.Tree()
	roles := configurator.NewClassifier(c.KnownNames()).Assign(groups[0].Steps)
	ids := roles.StepIDs()
	want := map[domain.Role]int{
		domain.RoleBottle:  10,
		domain.RoleLiquid:  20,
		domain.RoleClosure: 30,
		domain.RoleLabel:   40,
	}
	for role, id := range want {
		if ids[role] != id {
			t.Fatalf("expected %s on step %d, got %d", role, id, ids[role])
		}
	}
}

func TestKnownNamesMergeNotesAndExtras(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	known := c.KnownNames()
	has := func(list []string, name string) bool {
		for _, n := range list {
			if n == name {
				return true
			}
		}
		return false
	}
	if !has(known.Liquids, "Pink Gin") || !has(known.Closures, "Wax Sealed") || !has(known.Closures, "Light Wood") {
		t.Fatalf("unexpected known names: %+v", known)
	}
	count := 0
	for _, n := range known.Bottles {
		if strings.EqualFold(n, "antica") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected antica once, got %d", count)
	}
}

func TestTreeIsFreshAndDeterministic(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	p, _ := c.Product("gin-70cl")
	a, b := p.Tree(), p.Tree()
	a[0].Steps[1].Attributes[0].Options[1].Selected = true
	if b[0].Steps[1].Attributes[0].Options[1].Selected {
		t.Fatalf("trees share option pointers")
	}
	if a[0].Steps[0].Attributes[0].Options[0].GUID != b[0].Steps[0].Attributes[0].Options[0].GUID {
		t.Fatalf("expected stable guids")
	}
	if a[0].Steps[2].Attributes[1].Enabled {
		t.Fatalf("expected wax seal attribute disabled")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `
default_bottle_slug: polo
products:
  - code: p1
    sku: SKU1
    areas:
      - {id: 1, name: polo_label_front, visible_with: [11]}
    groups:
      - id: 1
        name: Build Your Bottle
        steps:
          - id: 1
            name: Bottle
            attributes:
              - id: 1
                name: Shape
                options:
                  - {id: 11, name: Polo, code: "bottles|polo", price: 2}
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := c.Product("p1")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if got := p.OptionPrices()[11]; got != 2 {
		t.Fatalf("expected price delta 2, got %v", got)
	}
	if vis := p.AreaVisibility()[1]; len(vis) != 1 || vis[0] != 11 {
		t.Fatalf("unexpected visibility %v", vis)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"no slug":      "products: [{code: a}]",
		"no products":  "default_bottle_slug: antica",
		"dup product":  "default_bottle_slug: antica\nproducts: [{code: a}, {code: a}]",
		"two selected": "default_bottle_slug: antica\nproducts: [{code: a, groups: [{id: 1, steps: [{id: 1, attributes: [{id: 1, options: [{id: 1, selected: true}, {id: 2, selected: true}]}]}]}]}]",
		"dup option":   "default_bottle_slug: antica\nproducts: [{code: a, groups: [{id: 1, steps: [{id: 1, attributes: [{id: 1, options: [{id: 1}, {id: 1}]}]}]}]}]",
		"bad area ref": "default_bottle_slug: antica\nproducts: [{code: a, areas: [{id: 1, name: x, visible_with: [9]}]}]",
		"not yaml":     "default_bottle_slug: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
)

//go:embed default.yaml
var defaultCatalogFS embed.FS

var ErrUnknownProduct = errors.New("unknown product")

// guidSpace seeds the deterministic GUIDs handed out for catalog entities.
var guidSpace = uuid.MustParse("6f1c7c4e-9a53-4f4e-8d7a-2f0b0c1d5e11")

type Catalog struct {
	DefaultBottleSlug string                       `yaml:"default_bottle_slug"`
	KnownExtras       KnownExtras                  `yaml:"known_extras"`
	Notes             map[string]map[string]string `yaml:"notes"`
	Products          []ProductDef                 `yaml:"products"`

	byCode map[string]*ProductDef
}

type KnownExtras struct {
	Bottles  []string `yaml:"bottles"`
	Liquids  []string `yaml:"liquids"`
	Closures []string `yaml:"closures"`
}

type ProductDef struct {
	Code      string            `yaml:"code"`
	SKU       string            `yaml:"sku"`
	Name      string            `yaml:"name"`
	BasePrice float64           `yaml:"base_price"`
	Meshes    map[string]string `yaml:"meshes"`
	Areas     []AreaDef         `yaml:"areas"`
	Groups    []GroupDef        `yaml:"groups"`
}

// AreaDef is a printable area. With VisibleWith set the area only shows while one of
// those options is selected.
type AreaDef struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	VisibleWith []int  `yaml:"visible_with"`
}

type GroupDef struct {
	ID     int       `yaml:"id"`
	Name   string    `yaml:"name"`
	Camera string    `yaml:"camera"`
	Steps  []StepDef `yaml:"steps"`
}

type StepDef struct {
	ID         int            `yaml:"id"`
	Name       string         `yaml:"name"`
	Attributes []AttributeDef `yaml:"attributes"`
}

type AttributeDef struct {
	ID      int         `yaml:"id"`
	Name    string      `yaml:"name"`
	Code    string      `yaml:"code"`
	Enabled *bool       `yaml:"enabled"`
	Options []OptionDef `yaml:"options"`
}

type OptionDef struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Code        string  `yaml:"code"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Selected    bool    `yaml:"selected"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	data, err := defaultCatalogFS.ReadFile("default.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.byCode = make(map[string]*ProductDef, len(c.Products))
	for i := range c.Products {
		c.byCode[c.Products[i].Code] = &c.Products[i]
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	c.DefaultBottleSlug = strings.TrimSpace(c.DefaultBottleSlug)
	if c.DefaultBottleSlug == "" {
		return errors.New("default_bottle_slug is required")
	}
	if len(c.Products) == 0 {
		return errors.New("no products defined")
	}
	codes := map[string]bool{}
	for i := range c.Products {
		p := &c.Products[i]
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			return fmt.Errorf("product %d: code is required", i)
		}
		if codes[p.Code] {
			return fmt.Errorf("duplicate product code: %s", p.Code)
		}
		codes[p.Code] = true
		if err := p.validate(); err != nil {
			return fmt.Errorf("product %s: %w", p.Code, err)
		}
	}
	return nil
}

func (p *ProductDef) validate() error {
	options := map[int]bool{}
	steps := map[int]bool{}
	for _, g := range p.Groups {
		for _, s := range g.Steps {
			if steps[s.ID] {
				return fmt.Errorf("duplicate step id %d", s.ID)
			}
			steps[s.ID] = true
			for _, a := range s.Attributes {
				selected := 0
				for _, o := range a.Options {
					if o.ID == 0 {
						return fmt.Errorf("attribute %d: option id is required", a.ID)
					}
					if options[o.ID] {
						return fmt.Errorf("duplicate option id %d", o.ID)
					}
					options[o.ID] = true
					if o.Selected {
						selected++
					}
				}
				if selected > 1 {
					return fmt.Errorf("attribute %d: %d options selected", a.ID, selected)
				}
			}
		}
	}
	areas := map[int]bool{}
	for _, a := range p.Areas {
		if areas[a.ID] {
			return fmt.Errorf("duplicate area id %d", a.ID)
		}
		areas[a.ID] = true
		for _, id := range a.VisibleWith {
			if !options[id] {
				return fmt.Errorf("area %d: unknown option %d", a.ID, id)
			}
		}
	}
	return nil
}

func (c *Catalog) Product(code string) (*ProductDef, error) {
	p, ok := c.byCode[strings.TrimSpace(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, code)
	}
	return p, nil
}

// ProductCodes lists product codes in catalog order.
func (c *Catalog) ProductCodes() []string {
	out := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, p.Code)
	}
	return out
}

// KnownNames derives the role name sets from the note keys plus the configured extras.
func (c *Catalog) KnownNames() configurator.KnownNames {
	return configurator.KnownNames{
		Bottles:  mergeNames(keys(c.Notes["bottles"]), c.KnownExtras.Bottles),
		Liquids:  mergeNames(keys(c.Notes["liquids"]), c.KnownExtras.Liquids),
		Closures: mergeNames(keys(c.Notes["closures"]), c.KnownExtras.Closures),
	}
}

func (c *Catalog) OptionNotes() configurator.Notes {
	out := make(configurator.Notes, len(c.Notes))
	for cat, m := range c.Notes {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[cat] = cp
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func mergeNames(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			n = strings.TrimSpace(n)
			k := strings.ToLower(n)
			if n == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func guid(kind string, code string, id int) string {
	return uuid.NewSHA1(guidSpace, []byte(fmt.Sprintf("%s/%s/%d", code, kind, id))).String()
}

// Tree builds a fresh option tree with the catalog's initial selections.
func (p *ProductDef) Tree() []*domain.Group {
	groups := make([]*domain.Group, 0, len(p.Groups))
	for _, g := range p.Groups {
		dg := &domain.Group{
			ID:               g.ID,
			GUID:             guid("group", p.Code, g.ID),
			Name:             g.Name,
			CameraLocationID: g.Camera,
		}
		for _, s := range g.Steps {
			ds := &domain.Step{ID: s.ID, GUID: guid("step", p.Code, s.ID), Name: s.Name}
			for _, a := range s.Attributes {
				da := &domain.Attribute{
					ID:      a.ID,
					GUID:    guid("attribute", p.Code, a.ID),
					Name:    a.Name,
					Code:    a.Code,
					Enabled: a.Enabled == nil || *a.Enabled,
				}
				for _, o := range a.Options {
					da.Options = append(da.Options, &domain.Option{
						ID:          o.ID,
						GUID:        guid("option", p.Code, o.ID),
						Name:        o.Name,
						Code:        o.Code,
						Description: o.Description,
						Selected:    o.Selected,
					})
				}
				ds.Attributes = append(ds.Attributes, da)
			}
			dg.Steps = append(dg.Steps, ds)
		}
		groups = append(groups, dg)
	}
	return groups
}

func (p *ProductDef) Product() *domain.Product {
	out := &domain.Product{SKU: p.SKU, Name: p.Name}
	for _, a := range p.Areas {
		out.Areas = append(out.Areas, &domain.Area{ID: a.ID, Name: a.Name})
	}
	return out
}

// OptionPrices maps option id to its price delta.
func (p *ProductDef) OptionPrices() map[int]float64 {
	out := map[int]float64{}
	for _, g := range p.Groups {
		for _, s := range g.Steps {
			for _, a := range s.Attributes {
				for _, o := range a.Options {
					if o.Price != 0 {
						out[o.ID] = o.Price
					}
				}
			}
		}
	}
	return out
}

// AreaVisibility maps area id to the options that reveal it. Areas absent from the map
// are always visible.
func (p *ProductDef) AreaVisibility() map[int][]int {
	out := map[int][]int{}
	for _, a := range p.Areas {
		if len(a.VisibleWith) > 0 {
			out[a.ID] = append([]int(nil), a.VisibleWith...)
		}
	}
	return out
}

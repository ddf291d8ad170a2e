package configurator

import (
	"strconv"
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func miniID(m *domain.Mini) int {
	if m == nil {
		return 0
	}
	return m.ID
}

// OrderKey changes only when sku, price, bottle, liquid or label change. The closure id is
// left out so a closure attribute switch does not republish mid-transition; the closure
// mini still travels in the snapshot body.
func OrderKey(s domain.OrderSnapshot) string {
	price := ""
	if s.Price != nil {
		price = strconv.FormatFloat(*s.Price, 'f', -1, 64)
	}
	return strings.Join([]string{
		s.SKU,
		price,
		strconv.Itoa(miniID(s.Selections.Bottle)),
		strconv.Itoa(miniID(s.Selections.Liquid)),
		strconv.Itoa(miniID(s.Selections.Label)),
	}, "|")
}

// Projector decides when a snapshot must be republished.
type Projector struct {
	lastKey   string
	published bool
}

// Claim reports whether snap differs from the last published key and, if so, records it.
func (p *Projector) Claim(snap domain.OrderSnapshot) bool {
	key := OrderKey(snap)
	if p.published && key == p.lastKey {
		return false
	}
	p.lastKey = key
	p.published = true
	return true
}

// Release forgets the last claim so the next snapshot publishes again.
func (p *Projector) Release() {
	p.published = false
	p.lastKey = ""
}

// BuildSnapshot assembles the order projection from a resolution.
func BuildSnapshot(r Resolution, product *domain.Product, price *float64, designs domain.LabelDesigns, meshID func(string) (string, bool)) domain.OrderSnapshot {
	snap := domain.OrderSnapshot{
		Price:      price,
		BottleSlug: r.Bottle.Slug,
		Selections: domain.OrderSelections{
			Bottle:        r.Bottle.Mini,
			Liquid:        r.Liquid.Mini,
			Closure:       r.Closure.Mini,
			Label:         r.Label.Mini,
			FrontDesignID: designs.FrontID(),
			BackDesignID:  designs.BackID(),
		},
		Valid: CanDesign(r),
	}
	if product != nil {
		snap.SKU = product.SKU
	}
	if meshID != nil && r.Bottle.Slug != "" {
		if id, ok := meshID(r.Bottle.Slug + "_label_front"); ok {
			snap.Mesh.Front = &id
		}
		if id, ok := meshID(r.Bottle.Slug + "_label_back"); ok {
			snap.Mesh.Back = &id
		}
	}
	return snap
}

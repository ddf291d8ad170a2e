package configurator

import (
	"fmt"
	"strconv"
	"strings"
)

type Role string

const (
	RoleBottle  Role = "bottle"
	RoleLiquid  Role = "liquid"
	RoleClosure Role = "closure"
	RoleLabel   Role = "label"
	RoleUnknown Role = "unknown"
)

// Mini is the compact option projection shared with the parent page.
type Mini struct {
	ID       int    `json:"id"`
	GUID     string `json:"guid"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

func ToMini(o *Option) *Mini {
	if o == nil {
		return nil
	}
	return &Mini{ID: o.ID, GUID: o.GUID, Name: o.Name, Selected: o.Selected}
}

// ResolvedSelection is the effective pick for one role. Option is nil for a synthetic bottle.
type ResolvedSelection struct {
	Slug   string  `json:"slug"`
	Mini   *Mini   `json:"mini"`
	Option *Option `json:"-"`
}

func (r ResolvedSelection) Synthetic() bool {
	return r.Mini != nil && r.Option == nil
}

// RoleOrder is the per-role selection block embedded in outbound messages.
type RoleOrder struct {
	Bottle  *Mini `json:"bottle"`
	Liquid  *Mini `json:"liquid"`
	Closure *Mini `json:"closure"`
	Label   *Mini `json:"label"`
}

type OrderSelections struct {
	Bottle        *Mini   `json:"bottle"`
	Liquid        *Mini   `json:"liquid"`
	Closure       *Mini   `json:"closure"`
	Label         *Mini   `json:"label"`
	FrontDesignID *string `json:"frontDesignId"`
	BackDesignID  *string `json:"backDesignId"`
}

type MeshIDs struct {
	Front *string `json:"frontMeshId"`
	Back  *string `json:"backMeshId"`
}

// OrderSnapshot is the normalized projection published to the shared order store.
type OrderSnapshot struct {
	SKU        string          `json:"sku"`
	Price      *float64        `json:"price"`
	BottleSlug string          `json:"bottleSlug"`
	Selections OrderSelections `json:"selections"`
	Mesh       MeshIDs         `json:"mesh"`
	Valid      bool            `json:"valid"`
}

func (s OrderSnapshot) RoleOrder() RoleOrder {
	return RoleOrder{
		Bottle:  s.Selections.Bottle,
		Liquid:  s.Selections.Liquid,
		Closure: s.Selections.Closure,
		Label:   s.Selections.Label,
	}
}

// DesignSide is the label face an uploaded design targets.
type DesignSide string

const (
	SideFront DesignSide = "front"
	SideBack  DesignSide = "back"
)

func ParseDesignSide(s string) (DesignSide, bool) {
	switch DesignSide(strings.ToLower(strings.TrimSpace(s))) {
	case SideFront:
		return SideFront, true
	case SideBack:
		return SideBack, true
	default:
		return "", false
	}
}

// UploadIntent is what the parent told us about an uploaded design, persisted before attach.
type UploadIntent struct {
	Order        any            `json:"order,omitempty"`
	DesignSide   string         `json:"designSide"`
	DesignExport map[string]any `json:"designExport,omitempty"`
}

// LabelDesigns holds the last uploaded design export per side.
type LabelDesigns struct {
	Front map[string]any `json:"front,omitempty"`
	Back  map[string]any `json:"back,omitempty"`
}

func (d LabelDesigns) FrontID() *string { return designID(d.Front) }
func (d LabelDesigns) BackID() *string  { return designID(d.Back) }

func designID(export map[string]any) *string {
	if export == nil {
		return nil
	}
	v, ok := export["id"]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if s == "" {
		return nil
	}
	return &s
}

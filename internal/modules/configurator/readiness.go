package configurator

import (
	"regexp"
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func hasRealSelection(m *domain.Mini) bool {
	return m != nil && m.Name != domain.NoSelectionName
}

// CanDesign requires liquid and closure to be real picks, and a bottle when a bottle step exists.
func CanDesign(r Resolution) bool {
	return hasRealSelection(r.Liquid.Mini) &&
		hasRealSelection(r.Closure.Mini) &&
		(!r.HasBottleStep || hasRealSelection(r.Bottle.Mini))
}

// MissingSelections names the roles still blocking CanDesign, in bottle/liquid/closure order.
func MissingSelections(r Resolution) []string {
	var missing []string
	if r.HasBottleStep && !hasRealSelection(r.Bottle.Mini) {
		missing = append(missing, string(domain.RoleBottle))
	}
	if !hasRealSelection(r.Liquid.Mini) {
		missing = append(missing, string(domain.RoleLiquid))
	}
	if !hasRealSelection(r.Closure.Mini) {
		missing = append(missing, string(domain.RoleClosure))
	}
	return missing
}

var trailingDotsRe = regexp.MustCompile(`\.{2,}$`)

// MissingSelectionsWarning renders "Please select bottle and liquid{suffix}".
// It returns "" when nothing is missing.
func MissingSelectionsWarning(missing []string, suffix string) string {
	if len(missing) == 0 {
		return ""
	}
	if suffix == "" {
		suffix = "."
	}
	msg := "Please select " + FormatList(missing) + suffix
	return trailingDotsRe.ReplaceAllString(msg, ".")
}

// FindLabelArea prefers the exact "{slug}_label_{side}" area, then any "*_label_{side}" area.
func FindLabelArea(areas []*domain.Area, bottleSlug string, side domain.DesignSide) *domain.Area {
	slug := strings.ToLower(bottleSlug)
	lowerSide := strings.ToLower(string(side))
	if slug != "" {
		want := slug + "_label_" + lowerSide
		for _, a := range areas {
			if a != nil && strings.ToLower(a.Name) == want {
				return a
			}
		}
	}
	suffix := "_label_" + lowerSide
	for _, a := range areas {
		if a != nil && strings.HasSuffix(strings.ToLower(a.Name), suffix) {
			return a
		}
	}
	return nil
}

// ActiveItems drops items the engine has marked deleted.
func ActiveItems(items []*domain.Item) []*domain.Item {
	out := make([]*domain.Item, 0, len(items))
	for _, it := range items {
		if it != nil && !it.Deleted {
			out = append(out, it)
		}
	}
	return out
}

func sidePopulated(area *domain.Area, items []*domain.Item) bool {
	if area == nil {
		return true
	}
	for _, it := range items {
		if id, ok := ResolveItemAreaID(it); ok && id == area.ID {
			return true
		}
	}
	return false
}

// LabelsPopulated holds when every existing label area (front, back) carries a live item.
// A side whose area does not exist is satisfied.
func LabelsPopulated(areas []*domain.Area, bottleSlug string, items []*domain.Item) bool {
	live := ActiveItems(items)
	return sidePopulated(FindLabelArea(areas, bottleSlug, domain.SideFront), live) &&
		sidePopulated(FindLabelArea(areas, bottleSlug, domain.SideBack), live)
}

// Signals are the readiness inputs for the first-render notification.
type Signals struct {
	AssetsLoading bool
	SceneLoading  bool
	ViewerReady   *bool
	HasProduct    bool
	GroupCount    int
	Priced        bool
}

func SignalsFromState(st domain.EngineState) Signals {
	return Signals{
		AssetsLoading: st.AssetsLoading,
		SceneLoading:  st.SceneLoading,
		ViewerReady:   st.ViewerReady,
		HasProduct:    st.Product != nil,
		GroupCount:    len(st.Groups),
		Priced:        st.Price != nil,
	}
}

// Ready is true once assets and scene are loaded, the viewer (if it reports) is ready,
// a product with groups exists and a price has been computed.
func (s Signals) Ready() bool {
	viewerOK := s.ViewerReady == nil || *s.ViewerReady
	return !s.AssetsLoading && !s.SceneLoading && viewerOK && s.HasProduct && s.GroupCount > 0 && s.Priced
}

// OneShot is a latch that opens exactly once for the lifetime of its owner.
type OneShot struct {
	fired bool
}

// Fire reports true the first time cond holds and false forever after.
func (g *OneShot) Fire(cond bool) bool {
	if g.fired || !cond {
		return false
	}
	g.fired = true
	return true
}

func (g *OneShot) Fired() bool { return g.fired }

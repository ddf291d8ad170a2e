package configurator

import (
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

type StepView struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
	Index int         `json:"index"`
	Total int         `json:"total"`
}

type AttributeView struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Options []*domain.Mini `json:"options"`
}

type NoteView struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type LabelAreasView struct {
	Front *domain.Area `json:"front,omitempty"`
	Back  *domain.Area `json:"back,omitempty"`
}

// View is the read model a client renders from.
type View struct {
	SessionID       string               `json:"sessionId"`
	GroupID         int                  `json:"groupId"`
	Step            *StepView            `json:"step,omitempty"`
	Attribute       *AttributeView       `json:"attribute,omitempty"`
	Roles           map[domain.Role]int  `json:"roles"`
	Order           domain.RoleOrder     `json:"order"`
	BottleSlug      string               `json:"bottleSlug"`
	SKU             *string              `json:"sku"`
	Price           *float64             `json:"price"`
	CanDesign       bool                 `json:"canDesign"`
	Missing         []string             `json:"missing,omitempty"`
	LabelsPopulated bool                 `json:"labelsPopulated"`
	ShowAddToCart   bool                 `json:"showAddToCart"`
	LabelAreas      LabelAreasView       `json:"labelAreas"`
	Items           int                  `json:"items"`
	Ready           bool                 `json:"ready"`
	FirstRender     bool                 `json:"firstRenderSent"`
	Warning         string               `json:"warning,omitempty"`
	Note            *NoteView            `json:"note,omitempty"`
	Snapshot        domain.OrderSnapshot `json:"snapshot"`
	Groups          []*domain.Group      `json:"groups,omitempty"`
}

var noteCategories = map[domain.Role]struct{ key, title string }{
	domain.RoleBottle:  {"bottles", "Bottle Style"},
	domain.RoleLiquid:  {"liquids", "Tasting Notes"},
	domain.RoleClosure: {"closures", "Closure"},
}

// View computes the current read model. It does not run the reactors.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.frameLocked()
	areas := areasOf(f.state.Product)
	live := ActiveItems(f.state.Items)
	v := View{
		SessionID:   s.id,
		GroupID:     s.activeGroupID,
		Roles:       f.roles.StepIDs(),
		Order:       f.res.Order(),
		BottleSlug:  f.res.Bottle.Slug,
		SKU:         skuOf(f.state.Product),
		Price:       f.state.Price,
		CanDesign:   CanDesign(f.res),
		Missing:     MissingSelections(f.res),
		Items:       len(live),
		Ready:       SignalsFromState(f.state).Ready(),
		FirstRender: s.firstRender.Fired(),
		Warning:     s.warning,
		Groups:      f.state.Groups,
	}
	v.LabelsPopulated = LabelsPopulated(areas, f.res.Bottle.Slug, live)
	v.ShowAddToCart = v.CanDesign && v.LabelsPopulated
	v.Snapshot = BuildSnapshot(f.res, f.state.Product, f.state.Price, domain.LabelDesigns{}, s.cfg.Engine.MeshIDByName)
	v.LabelAreas = s.visibleLabelAreas(f.state, areas)

	if group, step, idx := s.activeStep(f); step != nil {
		role := f.roles.RoleOf(step.ID)
		v.Step = &StepView{ID: step.ID, Name: step.Name, Role: role, Index: idx, Total: len(group.Steps)}
		if attr := currentAttribute(step); attr != nil {
			av := &AttributeView{ID: attr.ID, Name: attr.Name}
			for _, o := range attr.Options {
				if m := domain.ToMini(o); m != nil {
					av.Options = append(av.Options, m)
				}
			}
			v.Attribute = av
			v.Note = s.noteFor(role, attr)
		}
	}
	return v
}

func (s *Session) noteFor(role domain.Role, attr *domain.Attribute) *NoteView {
	cat, ok := noteCategories[role]
	if !ok {
		return nil
	}
	for _, o := range attr.Options {
		if o == nil || !o.Selected || o.IsNoSelection() {
			continue
		}
		if text, ok := s.cfg.Notes[cat.key][o.Name]; ok && text != "" {
			return &NoteView{Title: cat.title, Text: text}
		}
	}
	return nil
}

// visibleLabelAreas picks the first visible front and back areas once the scene is loaded.
func (s *Session) visibleLabelAreas(st domain.EngineState, areas []*domain.Area) LabelAreasView {
	var out LabelAreasView
	if st.SceneLoading {
		return out
	}
	for _, a := range areas {
		if a == nil || !s.cfg.Engine.IsAreaVisible(a.ID) {
			continue
		}
		name := strings.ToLower(a.Name)
		if out.Front == nil && strings.Contains(name, "front") {
			out.Front = a
		}
		if out.Back == nil && strings.Contains(name, "back") {
			out.Back = a
		}
	}
	return out
}

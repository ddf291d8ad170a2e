package configurator

import (
	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// FindSelectedOption returns the first selected option across the step's attributes.
func FindSelectedOption(step *domain.Step) *domain.Option {
	if step == nil {
		return nil
	}
	for _, a := range step.Attributes {
		if a == nil {
			continue
		}
		for _, o := range a.Options {
			if o != nil && o.Selected {
				return o
			}
		}
	}
	return nil
}

// FallbackOption is the first option of the first enabled attribute, or of the first
// attribute when preferEnabled is false or nothing is enabled.
func FallbackOption(step *domain.Step, preferEnabled bool) *domain.Option {
	if step == nil || len(step.Attributes) == 0 {
		return nil
	}
	var attr *domain.Attribute
	if preferEnabled {
		for _, a := range step.Attributes {
			if a != nil && a.Enabled {
				attr = a
				break
			}
		}
	}
	if attr == nil {
		attr = step.Attributes[0]
	}
	if attr == nil || len(attr.Options) == 0 {
		return nil
	}
	return attr.Options[0]
}

func findNoSelection(options []*domain.Option) *domain.Option {
	for _, o := range options {
		if o.IsNoSelection() {
			return o
		}
	}
	return nil
}

// PickFromStep resolves the effective option for a non-bottle role.
func PickFromStep(step *domain.Step, role domain.Role) *domain.Option {
	if step == nil {
		return nil
	}
	if sel := FindSelectedOption(step); sel != nil {
		return sel
	}
	if role == domain.RoleLabel {
		if noSel := findNoSelection(step.Options()); noSel != nil {
			return noSel
		}
	}
	return FallbackOption(step, true)
}

// SyntheticBottle fabricates a selected bottle for slug. It returns nil for an empty slug.
func SyntheticBottle(slug string) *domain.ResolvedSelection {
	if slug == "" {
		return nil
	}
	return &domain.ResolvedSelection{
		Slug: slug,
		Mini: &domain.Mini{
			ID:       SyntheticIDFromSlug(slug),
			GUID:     "synthetic-" + slug,
			Name:     Titleize(slug),
			Selected: true,
		},
	}
}

// ResolveBottle returns the real selected bottle or, failing that, the synthetic default.
func ResolveBottle(step *domain.Step, defaultSlug string) domain.ResolvedSelection {
	if sel := FindSelectedOption(step); sel != nil {
		slug := SlugFromOption(sel)
		if slug == "" {
			slug = defaultSlug
		}
		return domain.ResolvedSelection{Slug: slug, Mini: domain.ToMini(sel), Option: sel}
	}
	if syn := SyntheticBottle(defaultSlug); syn != nil {
		return *syn
	}
	return domain.ResolvedSelection{}
}

func resolveRole(step *domain.Step, role domain.Role) domain.ResolvedSelection {
	o := PickFromStep(step, role)
	if o == nil {
		return domain.ResolvedSelection{}
	}
	return domain.ResolvedSelection{Slug: SlugFromOption(o), Mini: domain.ToMini(o), Option: o}
}

// Resolution is the effective selection of every role at one point in time.
type Resolution struct {
	Roles         RoleMap
	Bottle        domain.ResolvedSelection
	Liquid        domain.ResolvedSelection
	Closure       domain.ResolvedSelection
	Label         domain.ResolvedSelection
	HasBottleStep bool
}

func Resolve(roles RoleMap, defaultBottleSlug string) Resolution {
	return Resolution{
		Roles:         roles,
		Bottle:        ResolveBottle(roles.Bottle, defaultBottleSlug),
		Liquid:        resolveRole(roles.Liquid, domain.RoleLiquid),
		Closure:       resolveRole(roles.Closure, domain.RoleClosure),
		Label:         resolveRole(roles.Label, domain.RoleLabel),
		HasBottleStep: roles.Bottle != nil,
	}
}

func (r Resolution) Order() domain.RoleOrder {
	return domain.RoleOrder{
		Bottle:  r.Bottle.Mini,
		Liquid:  r.Liquid.Mini,
		Closure: r.Closure.Mini,
		Label:   r.Label.Mini,
	}
}

// BottleID is the id used for bottle-change detection: the real option, else the synthetic one.
func (r Resolution) BottleID() (int, bool) {
	if r.Bottle.Mini == nil {
		return 0, false
	}
	return r.Bottle.Mini.ID, true
}

// DefaultBottleSeed reports the option to select so the bottle step starts on the default
// slug. ok is false once the selection already matches or no default option exists.
func DefaultBottleSeed(step *domain.Step, defaultSlug string) (optionID int, ok bool) {
	if step == nil || defaultSlug == "" {
		return 0, false
	}
	if SlugFromOption(FindSelectedOption(step)) == defaultSlug {
		return 0, false
	}
	for _, a := range step.Attributes {
		if a == nil {
			continue
		}
		for _, o := range a.Options {
			if o == nil || SlugFromOption(o) != defaultSlug {
				continue
			}
			if o.Selected {
				return 0, false
			}
			return o.ID, true
		}
	}
	return 0, false
}

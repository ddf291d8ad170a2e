package configurator

import (
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// KnownNames are the option names that identify a role outright. They are catalog data;
// the keyword fallbacks below stay fixed.
type KnownNames struct {
	Bottles  []string
	Liquids  []string
	Closures []string
}

type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	out := make(nameSet, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

type Classifier struct {
	bottles  nameSet
	liquids  nameSet
	closures nameSet
}

func NewClassifier(known KnownNames) *Classifier {
	return &Classifier{
		bottles:  newNameSet(known.Bottles),
		liquids:  newNameSet(known.Liquids),
		closures: newNameSet(known.Closures),
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Classify maps one step to a role. Label beats closure beats liquid beats bottle.
// A step without any option is unknown.
func (c *Classifier) Classify(step *domain.Step) domain.Role {
	if step == nil || len(step.Attributes) == 0 {
		return domain.RoleUnknown
	}
	options := step.Options()
	if len(options) == 0 {
		return domain.RoleUnknown
	}

	var attrNames, optionNames, optionCodes []string
	for _, a := range step.Attributes {
		if a == nil {
			continue
		}
		if n := strings.ToLower(strings.TrimSpace(a.Name)); n != "" {
			attrNames = append(attrNames, n)
		}
	}
	for _, o := range options {
		if n := strings.ToLower(strings.TrimSpace(o.Name)); n != "" {
			optionNames = append(optionNames, n)
		}
		if code := strings.ToLower(strings.TrimSpace(o.Code)); code != "" {
			optionCodes = append(optionCodes, code)
		}
	}

	for _, code := range optionCodes {
		if strings.Contains(code, "_label_") {
			return domain.RoleLabel
		}
	}
	for _, n := range attrNames {
		if containsAny(n, "label", "design") {
			return domain.RoleLabel
		}
	}

	for _, n := range optionNames {
		if c.closures.has(n) || containsAny(n, "wax", "wood") {
			return domain.RoleClosure
		}
	}
	for _, n := range attrNames {
		if containsAny(n, "closure", "wax", "wood") {
			return domain.RoleClosure
		}
	}

	for _, n := range optionNames {
		if c.liquids.has(n) || containsAny(n, "gin", "liquid") {
			return domain.RoleLiquid
		}
	}

	for _, n := range optionNames {
		if c.bottles.has(n) || strings.Contains(n, "bottle") {
			return domain.RoleBottle
		}
	}

	return domain.RoleUnknown
}

// RoleMap is the step claimed by each role; nil means no step has that role.
type RoleMap struct {
	Bottle  *domain.Step
	Liquid  *domain.Step
	Closure *domain.Step
	Label   *domain.Step
}

// Assign walks steps in order; the first step with a role claims it. When no step
// classifies as label, the last step takes the label role unless another role holds it.
func (c *Classifier) Assign(steps []*domain.Step) RoleMap {
	var m RoleMap
	for _, step := range steps {
		switch c.Classify(step) {
		case domain.RoleBottle:
			if m.Bottle == nil {
				m.Bottle = step
			}
		case domain.RoleLiquid:
			if m.Liquid == nil {
				m.Liquid = step
			}
		case domain.RoleClosure:
			if m.Closure == nil {
				m.Closure = step
			}
		case domain.RoleLabel:
			if m.Label == nil {
				m.Label = step
			}
		}
	}
	if m.Label == nil && len(steps) > 0 {
		last := steps[len(steps)-1]
		if last != nil && m.RoleOf(last.ID) == domain.RoleUnknown {
			m.Label = last
		}
	}
	return m
}

// RoleOf returns the role whose step has the given id.
func (m RoleMap) RoleOf(stepID int) domain.Role {
	switch {
	case m.Bottle != nil && m.Bottle.ID == stepID:
		return domain.RoleBottle
	case m.Liquid != nil && m.Liquid.ID == stepID:
		return domain.RoleLiquid
	case m.Closure != nil && m.Closure.ID == stepID:
		return domain.RoleClosure
	case m.Label != nil && m.Label.ID == stepID:
		return domain.RoleLabel
	default:
		return domain.RoleUnknown
	}
}

// StepIDs reports the claimed step id per role, for state views.
func (m RoleMap) StepIDs() map[domain.Role]int {
	out := map[domain.Role]int{}
	if m.Bottle != nil {
		out[domain.RoleBottle] = m.Bottle.ID
	}
	if m.Liquid != nil {
		out[domain.RoleLiquid] = m.Liquid.ID
	}
	if m.Closure != nil {
		out[domain.RoleClosure] = m.Closure.ID
	}
	if m.Label != nil {
		out[domain.RoleLabel] = m.Label.ID
	}
	return out
}

package configurator

import (
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// labelOptions returns the options of the single attribute that carries every label design.
func labelOptions(step *domain.Step) []*domain.Option {
	if step == nil || len(step.Attributes) == 0 || step.Attributes[0] == nil {
		return nil
	}
	var out []*domain.Option
	for _, o := range step.Attributes[0].Options {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// MatchLabelOption finds the label design made for the bottle slug: a code ending in
// "_{slug}", a code containing "{slug}_label", or a name that slugifies to the slug.
func MatchLabelOption(options []*domain.Option, bottleSlug string) *domain.Option {
	if bottleSlug == "" {
		return nil
	}
	for _, o := range options {
		code := strings.ToLower(o.Code)
		if strings.HasSuffix(code, "_"+bottleSlug) ||
			strings.Contains(code, bottleSlug+"_label") ||
			Slugify(o.Name) == bottleSlug {
			return o
		}
	}
	return nil
}

// PlanLabelSync decides which label option, if any, must be selected so the label
// attribute tracks the bottle while the label step is active and stays on "No Selection"
// everywhere else. ok is false when the current selection is already right.
func PlanLabelSync(step *domain.Step, onLabelStep bool, bottleSlug string) (optionID int, ok bool) {
	opts := labelOptions(step)
	if len(opts) == 0 {
		return 0, false
	}
	noSel := findNoSelection(opts)

	if !onLabelStep {
		var active *domain.Option
		for _, o := range opts {
			if o.Selected {
				active = o
				break
			}
		}
		if active != nil && noSel != nil && active.ID != noSel.ID {
			return noSel.ID, true
		}
		return 0, false
	}

	if match := MatchLabelOption(opts, bottleSlug); match != nil {
		if match.Selected {
			return 0, false
		}
		return match.ID, true
	}

	for _, o := range opts {
		if noSel != nil && o.ID == noSel.ID {
			continue
		}
		if o.Selected {
			return 0, false
		}
		return o.ID, true
	}

	if noSel != nil && !noSel.Selected {
		return noSel.ID, true
	}
	return 0, false
}

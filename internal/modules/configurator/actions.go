package configurator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// Outcome reasons.
const (
	ReasonUntrustedOrigin   = "untrusted_origin"
	ReasonUnstructured      = "unstructured"
	ReasonUnsupportedType   = "unsupported_type"
	ReasonInvalidPayload    = "invalid_payload"
	ReasonMissingSide       = "missing_side"
	ReasonNoArea            = "no_area"
	ReasonImageFailed       = "image_failed"
	ReasonAttachFailed      = "attach_failed"
	ReasonMissingSelections = "missing_selections"
	ReasonLabelsMissing     = "labels_missing"
	ReasonCartFailed        = "cart_failed"
	ReasonSelectFailed      = "select_failed"
	ReasonUnknownStep       = "unknown_step"
	ReasonNoNextStep        = "no_next_step"
	ReasonNoPrevStep        = "no_prev_step"
	ReasonInvalidSelection  = "invalid_selection"
)

const (
	suffixDesignWithAI  = " before designing with AI."
	suffixUploadLabels  = " before uploading labels."
	suffixLabelStep     = ` (not "No Selection") before designing labels.`
	suffixAddToCart     = " before adding to cart."
	warnLabelsMissing   = "Please add your front and back label designs before adding to cart."
	warnStepNeedsChoice = `Please select a %s option (not "No Selection") to continue.`
)

var labelishStepRe = regexp.MustCompile(`(?i)label|design`)

// HandleMessage processes one cross-document message from the parent page.
func (s *Session) HandleMessage(ctx context.Context, origin string, raw []byte) Outcome {
	ctx, span := s.tracer.Start(ctx, "configurator.HandleMessage",
		trace.WithAttributes(attribute.String("message.origin", origin)))
	defer span.End()

	if !s.cfg.Origins.Allows(origin) {
		s.log.Warn("Ignoring message from untrusted origin", "origin", origin)
		return Outcome{Reason: ReasonUntrustedOrigin}
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		s.log.Debug("Ignoring unstructured message", "error", err)
		return Outcome{Reason: ReasonUnstructured}
	}
	span.SetAttributes(attribute.String("message.type", env.CustomMessageType))

	switch env.CustomMessageType {
	case domain.MessageUploadDesign:
		return s.handleUploadDesign(ctx, env.Message)
	default:
		s.log.Debug("Ignoring message type", "type", env.CustomMessageType)
		return Outcome{Reason: ReasonUnsupportedType}
	}
}

func (s *Session) handleUploadDesign(ctx context.Context, body json.RawMessage) Outcome {
	var msg domain.UploadDesignMessage
	if len(body) > 0 && string(body) != "null" {
		if err := json.Unmarshal(body, &msg); err != nil {
			s.log.Warn("Invalid uploadDesign payload", "error", err)
			return Outcome{Reason: ReasonInvalidPayload}
		}
	}

	s.mu.Lock()
	if strings.TrimSpace(msg.DesignSide) != "" {
		intent := domain.UploadIntent{
			Order:        msg.Order,
			DesignSide:   msg.DesignSide,
			DesignExport: msg.DesignExport,
		}
		if err := s.cfg.Store.SetFromUploadDesign(ctx, s.id, intent); err != nil {
			s.log.Warn("Persist upload intent failed", "error", err)
		}
	}
	side, ok := domain.ParseDesignSide(msg.DesignSide)
	if !ok {
		s.mu.Unlock()
		s.log.Warn("uploadDesign without a usable designSide", "design_side", msg.DesignSide)
		return Outcome{Reason: ReasonMissingSide}
	}
	f := s.frameLocked()
	area := FindLabelArea(areasOf(f.state.Product), f.res.Bottle.Slug, side)
	order := f.res.Order()
	sku := skuOf(f.state.Product)
	s.mu.Unlock()

	if area == nil || area.ID == 0 {
		s.log.Warn("No label area for design side", "design_side", side, "bottle_slug", f.res.Bottle.Slug)
		return Outcome{Reason: ReasonNoArea}
	}

	img, err := s.cfg.Engine.CreateImageFromURL(ctx, msg.SourceURL())
	if err != nil || img.ImageID == 0 {
		s.log.Warn("Create image from design export failed", "url", msg.SourceURL(), "error", err)
		return Outcome{Reason: ReasonImageFailed}
	}
	if _, err := s.cfg.Engine.AddItemImage(ctx, img.ImageID, area.ID); err != nil {
		s.log.Warn("Attach design to area failed", "image_id", img.ImageID, "area_id", area.ID, "error", err)
		return Outcome{Reason: ReasonAttachFailed}
	}
	s.log.Info("Label design attached", "design_side", side, "area", area.Name)

	s.post(ctx, domain.Envelope{
		CustomMessageType: domain.MessageLabelAdded,
		Message: domain.LabelAddedMessage{
			Order:        order,
			DesignSide:   side,
			DesignExport: msg.DesignExport,
			ProductSKU:   sku,
		},
	})
	return Outcome{Accepted: true}
}

// SelectOption forwards a user click to the engine and re-runs the reactors.
func (s *Session) SelectOption(ctx context.Context, optionID int) Outcome {
	ctx, span := s.tracer.Start(ctx, "configurator.SelectOption",
		trace.WithAttributes(attribute.Int("option.id", optionID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.frameLocked()
	if !s.selectLocked(ctx, optionID, "user") {
		return Outcome{Reason: ReasonSelectFailed}
	}
	// A deliberate bottle pick is a mismatch already seen; the default seed leaves it alone.
	if stepHasOption(f.roles.Bottle, optionID) {
		s.lastSeedKey = seedKey(&domain.Option{ID: optionID})
	}
	s.warning = ""
	s.syncLocked(ctx)
	return Outcome{Accepted: true}
}

// SelectStep jumps to any step in any group.
func (s *Session) SelectStep(ctx context.Context, stepID int) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.frameLocked()
	s.ensureNavigationLocked(f)
	for _, g := range f.state.Groups {
		if g == nil {
			continue
		}
		for _, st := range g.Steps {
			if st != nil && st.ID == stepID {
				s.activeGroupID, s.activeStepID = g.ID, st.ID
				s.warning = ""
				s.syncLocked(ctx)
				return Outcome{Accepted: true}
			}
		}
	}
	return Outcome{Reason: ReasonUnknownStep}
}

// currentAttribute is the attribute shown on a step: the first enabled one, else the first.
func currentAttribute(step *domain.Step) *domain.Attribute {
	if step == nil {
		return nil
	}
	for _, a := range step.Attributes {
		if a != nil && a.Enabled {
			return a
		}
	}
	for _, a := range step.Attributes {
		if a != nil {
			return a
		}
	}
	return nil
}

func stepHasOption(step *domain.Step, optionID int) bool {
	for _, o := range step.Options() {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

func attributeHasRealSelection(a *domain.Attribute) bool {
	if a == nil {
		return false
	}
	for _, o := range a.Options {
		if o != nil && o.Selected && !o.IsNoSelection() {
			return true
		}
	}
	return false
}

// NextStep advances within the active group. Leaving a bottle, liquid or closure step
// needs a real pick; entering a label step needs every design prerequisite.
func (s *Session) NextStep(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.frameLocked()
	s.ensureNavigationLocked(f)
	group, step, idx := s.activeStep(f)
	if group == nil || step == nil || idx+1 >= len(group.Steps) {
		return Outcome{Reason: ReasonNoNextStep}
	}
	switch role := f.roles.RoleOf(step.ID); role {
	case domain.RoleBottle, domain.RoleLiquid, domain.RoleClosure:
		if !attributeHasRealSelection(currentAttribute(step)) {
			w := fmt.Sprintf(warnStepNeedsChoice, role)
			s.setWarningLocked(w)
			return Outcome{Reason: ReasonInvalidSelection, Warning: w}
		}
	}
	next := group.Steps[idx+1]
	if next != nil && labelishStepRe.MatchString(next.Name) && !CanDesign(f.res) {
		w := MissingSelectionsWarning(MissingSelections(f.res), suffixLabelStep)
		s.setWarningLocked(w)
		return Outcome{Reason: ReasonMissingSelections, Warning: w}
	}
	if next != nil {
		s.activeStepID = next.ID
	}
	s.warning = ""
	s.syncLocked(ctx)
	return Outcome{Accepted: true}
}

func (s *Session) PrevStep(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.frameLocked()
	s.ensureNavigationLocked(f)
	group, step, idx := s.activeStep(f)
	if group == nil || step == nil || idx <= 0 || group.Steps[idx-1] == nil {
		return Outcome{Reason: ReasonNoPrevStep}
	}
	s.activeStepID = group.Steps[idx-1].ID
	s.warning = ""
	s.syncLocked(ctx)
	return Outcome{Accepted: true}
}

// DesignWithAI asks the parent page to open the AI label designer.
func (s *Session) DesignWithAI(ctx context.Context) Outcome {
	return s.requestDesign(ctx, domain.MessageDesignWithAI, suffixDesignWithAI)
}

// UploadLabels asks the parent page to open the label upload flow.
func (s *Session) UploadLabels(ctx context.Context) Outcome {
	return s.requestDesign(ctx, domain.MessageUploadLabels, suffixUploadLabels)
}

func (s *Session) requestDesign(ctx context.Context, msgType, suffix string) Outcome {
	ctx, span := s.tracer.Start(ctx, "configurator."+msgType)
	defer span.End()

	s.mu.Lock()
	f := s.frameLocked()
	if !CanDesign(f.res) {
		w := MissingSelectionsWarning(MissingSelections(f.res), suffix)
		s.setWarningLocked(w)
		s.mu.Unlock()
		return Outcome{Reason: ReasonMissingSelections, Warning: w}
	}
	body := domain.SelectionsMessage{
		Order:      f.res.Order(),
		ProductSKU: skuOf(f.state.Product),
		Price:      f.state.Price,
	}
	s.warning = ""
	s.mu.Unlock()

	s.post(ctx, domain.Envelope{CustomMessageType: msgType, Message: body})
	return Outcome{Accepted: true}
}

// AddToCart runs the engine's cart flow. The parent is told about the cart line from inside
// the engine's pre-cart callback so it sees the final preview and composition.
func (s *Session) AddToCart(ctx context.Context) Outcome {
	ctx, span := s.tracer.Start(ctx, "configurator.AddToCart")
	defer span.End()

	s.mu.Lock()
	f := s.frameLocked()
	if !CanDesign(f.res) {
		w := MissingSelectionsWarning(MissingSelections(f.res), suffixAddToCart)
		s.setWarningLocked(w)
		s.mu.Unlock()
		return Outcome{Reason: ReasonMissingSelections, Warning: w}
	}
	if !LabelsPopulated(areasOf(f.state.Product), f.res.Bottle.Slug, f.state.Items) {
		s.setWarningLocked(warnLabelsMissing)
		s.mu.Unlock()
		return Outcome{Reason: ReasonLabelsMissing, Warning: warnLabelsMissing}
	}
	res := f.res
	sku := skuOf(f.state.Product)
	s.warning = ""
	s.mu.Unlock()

	err := s.cfg.Engine.AddToCart(ctx, func(ctx context.Context, data domain.CartData) (domain.CartData, error) {
		s.post(ctx, domain.Envelope{
			CustomMessageType: domain.MessageAddToCart,
			Message: domain.AddToCartMessage{
				Preview:          data.Preview,
				Quantity:         data.Quantity,
				CompositionID:    data.Composition,
				ZakekeAttributes: data.Attributes,
				ProductID:        sku,
				Bottle:           res.Bottle.Mini,
				Liquid:           res.Liquid.Mini,
				Closure:          res.Closure.Mini,
				Label:            res.Label.Mini,
			},
		})
		return data, nil
	})
	if err != nil {
		s.log.Error("Error during addToCart", "error", err)
		return Outcome{Reason: ReasonCartFailed}
	}
	return Outcome{Accepted: true}
}

package configurator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/pointers"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

var ErrNoEngine = errors.New("engine required")

// Engine is the third-party configuration engine as seen by the reactor.
type Engine interface {
	State() domain.EngineState
	SelectOption(ctx context.Context, optionID int) error
	CreateImageFromURL(ctx context.Context, url string) (domain.Image, error)
	AddItemImage(ctx context.Context, imageID, areaID int) (*domain.Item, error)
	RemoveItem(ctx context.Context, guid string) error
	MeshIDByName(name string) (string, bool)
	IsAreaVisible(areaID int) bool
	AddToCart(ctx context.Context, before func(context.Context, domain.CartData) (domain.CartData, error)) error
}

// OrderStore is the shared order state owned outside the reactor.
type OrderStore interface {
	SetFromSelections(ctx context.Context, sessionID string, snap domain.OrderSnapshot) error
	SetFromUploadDesign(ctx context.Context, sessionID string, intent domain.UploadIntent) error
	LabelDesigns(ctx context.Context, sessionID string) (domain.LabelDesigns, error)
}

// Poster delivers outbound envelopes to the parent page.
type Poster interface {
	Post(ctx context.Context, sessionID string, env domain.Envelope) error
}

// Notes holds option notes by category ("bottles", "liquids", "closures") and option name.
type Notes map[string]map[string]string

const (
	// DefaultSettleDelay approximates two animation frames.
	DefaultSettleDelay = 32 * time.Millisecond

	maxSettlePasses  = 8
	primaryGroupName = "Build Your Bottle"
)

type Config struct {
	ID                string
	Engine            Engine
	Store             OrderStore
	Poster            Poster
	Origins           OriginPolicy
	Known             KnownNames
	DefaultBottleSlug string
	Notes             Notes
	Log               *logger.Logger
	SettleDelay       time.Duration
	// After schedules f once d has elapsed. Defaults to time.AfterFunc.
	After func(d time.Duration, f func())
}

// Outcome reports what happened to a user action or inbound message. Failures are
// described, never returned as errors.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// Session is the reactor for one embedded configurator. All reactions run under mu; the
// one-shot gates and last-seen memos are written before the lock is released.
type Session struct {
	mu sync.Mutex

	id         string
	cfg        Config
	log        *logger.Logger
	tracer     trace.Tracer
	classifier *Classifier

	activeGroupID int
	activeStepID  int
	navigated     bool

	prevBottleID  int
	hasPrevBottle bool
	lastSeedKey   string

	labelEntryClear OneShot
	firstRender     OneShot
	projector       Projector

	warning string
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Engine == nil {
		return nil, ErrNoEngine
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryOrderStore()
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.After == nil {
		cfg.After = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &Session{
		id:         cfg.ID,
		cfg:        cfg,
		log:        cfg.Log.With("component", "ConfiguratorSession", "session", cfg.ID),
		tracer:     otel.Tracer("github.com/Spirits-Studio/zakeke-lite/configurator"),
		classifier: NewClassifier(cfg.Known),
	}, nil
}

func (s *Session) ID() string { return s.id }

// frame is everything derived from one engine read.
type frame struct {
	state domain.EngineState
	group *domain.Group
	steps []*domain.Step
	roles RoleMap
	res   Resolution
}

func primaryGroup(groups []*domain.Group) *domain.Group {
	for _, g := range groups {
		if g != nil && len(g.Steps) > 0 {
			return g
		}
	}
	return nil
}

func (s *Session) frameLocked() frame {
	st := s.cfg.Engine.State()
	f := frame{state: st, group: primaryGroup(st.Groups)}
	if f.group != nil {
		f.steps = f.group.Steps
	}
	f.roles = s.classifier.Assign(f.steps)
	f.res = Resolve(f.roles, s.cfg.DefaultBottleSlug)
	return f
}

// ensureNavigationLocked picks the initial group and step the first time groups exist.
func (s *Session) ensureNavigationLocked(f frame) {
	if s.navigated || len(f.state.Groups) == 0 {
		return
	}
	var start *domain.Group
	for _, g := range f.state.Groups {
		if g != nil && g.Name == primaryGroupName {
			start = g
			break
		}
	}
	if start == nil {
		start = f.state.Groups[0]
	}
	if start == nil {
		return
	}
	s.activeGroupID = start.ID
	if len(start.Steps) > 0 && start.Steps[0] != nil {
		s.activeStepID = start.Steps[0].ID
	}
	s.navigated = true
}

func (s *Session) activeStep(f frame) (*domain.Group, *domain.Step, int) {
	if !s.navigated {
		return nil, nil, -1
	}
	for _, g := range f.state.Groups {
		if g == nil || g.ID != s.activeGroupID {
			continue
		}
		for i, st := range g.Steps {
			if st != nil && st.ID == s.activeStepID {
				return g, st, i
			}
		}
		return g, nil, -1
	}
	return nil, nil, -1
}

func (s *Session) onLabelStep(f frame) bool {
	_, step, _ := s.activeStep(f)
	return step != nil && f.roles.Label != nil && step.ID == f.roles.Label.ID
}

// Sync re-runs every reactor against the engine's current state. Call it after anything
// that may have changed the engine: option clicks, navigation, readiness flags.
func (s *Session) Sync(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "configurator.Sync")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
}

func (s *Session) syncLocked(ctx context.Context) {
	settled := false
	for i := 0; i < maxSettlePasses; i++ {
		if !s.reactLocked(ctx) {
			settled = true
			break
		}
	}
	if !settled {
		s.log.Warn("Selections did not settle", "passes", maxSettlePasses)
	}
	f := s.frameLocked()
	s.publishOrderLocked(ctx, f)
	s.maybeFirstRenderLocked(f)
}

// reactLocked runs one pass and reports whether it asked the engine to change a selection.
func (s *Session) reactLocked(ctx context.Context) bool {
	f := s.frameLocked()
	s.ensureNavigationLocked(f)

	if id, ok := f.res.BottleID(); ok {
		if s.hasPrevBottle && id != s.prevBottleID {
			s.log.Info("Bottle changed; clearing attached items", "from", s.prevBottleID, "to", id)
			s.clearAllItemsLocked(ctx)
		}
		s.prevBottleID, s.hasPrevBottle = id, true
	}

	if f.roles.Bottle != nil {
		if optID, ok := DefaultBottleSeed(f.roles.Bottle, s.cfg.DefaultBottleSlug); ok {
			key := seedKey(FindSelectedOption(f.roles.Bottle))
			if key != s.lastSeedKey {
				s.lastSeedKey = key
				if s.selectLocked(ctx, optID, "default_bottle") {
					return true
				}
			}
		}
	}

	onLabel := s.onLabelStep(f)
	if s.labelEntryClear.Fire(onLabel) {
		s.clearAllItemsLocked(ctx)
	}

	if optID, ok := PlanLabelSync(f.roles.Label, onLabel, f.res.Bottle.Slug); ok {
		if s.selectLocked(ctx, optID, "label_sync") {
			return true
		}
	}
	return false
}

func seedKey(selected *domain.Option) string {
	if selected == nil {
		return "none"
	}
	return fmt.Sprintf("option:%d", selected.ID)
}

func (s *Session) selectLocked(ctx context.Context, optionID int, reason string) bool {
	if err := s.cfg.Engine.SelectOption(ctx, optionID); err != nil {
		s.log.Warn("Select option failed", "option_id", optionID, "reason", reason, "error", err)
		return false
	}
	s.log.Debug("Selected option", "option_id", optionID, "reason", reason)
	return true
}

// clearAllItemsLocked removes live items one at a time; one failure does not stop the rest.
func (s *Session) clearAllItemsLocked(ctx context.Context) {
	for _, it := range ActiveItems(s.cfg.Engine.State().Items) {
		if err := s.cfg.Engine.RemoveItem(ctx, it.GUID); err != nil {
			s.log.Warn("Failed to remove item", "item_guid", it.GUID, "error", err)
		}
	}
}

func (s *Session) publishOrderLocked(ctx context.Context, f frame) {
	designs, err := s.cfg.Store.LabelDesigns(ctx, s.id)
	if err != nil {
		s.log.Warn("Read label designs failed", "error", err)
	}
	snap := BuildSnapshot(f.res, f.state.Product, f.state.Price, designs, s.cfg.Engine.MeshIDByName)
	if !s.projector.Claim(snap) {
		return
	}
	if err := s.cfg.Store.SetFromSelections(ctx, s.id, snap); err != nil {
		s.log.Warn("Publish order snapshot failed", "error", err)
		s.projector.Release()
	}
}

func (s *Session) maybeFirstRenderLocked(f frame) {
	if !s.firstRender.Fire(SignalsFromState(f.state).Ready()) {
		return
	}
	s.log.Info("Configurator ready; notifying parent after settle", "delay", s.cfg.SettleDelay)
	s.cfg.After(s.cfg.SettleDelay, func() {
		s.post(context.Background(), domain.Envelope{
			CustomMessageType: domain.MessageFirstRender,
			Message:           domain.FirstRenderMessage{CloseLoadingScreen: true},
		})
	})
}

// post is best-effort: failures are logged and dropped.
func (s *Session) post(ctx context.Context, env domain.Envelope) {
	if s.cfg.Poster == nil {
		return
	}
	ctx, span := s.tracer.Start(ctx, "configurator.Post",
		trace.WithAttributes(attribute.String("message.type", env.CustomMessageType)))
	defer span.End()
	if err := s.cfg.Poster.Post(ctx, s.id, env); err != nil {
		s.log.Debug("postMessage failed", "type", env.CustomMessageType, "error", err)
	}
}

func (s *Session) setWarningLocked(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	s.warning = msg
	s.log.Warn("Configurator warning", "message", msg)
}

func skuOf(p *domain.Product) *string {
	if p == nil {
		return nil
	}
	return pointers.NonEmpty(p.SKU)
}

func areasOf(p *domain.Product) []*domain.Area {
	if p == nil {
		return nil
	}
	return p.Areas
}

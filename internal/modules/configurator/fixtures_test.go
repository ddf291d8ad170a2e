package configurator

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func opt(id int, name, code string, selected bool) *domain.Option {
	return &domain.Option{ID: id, GUID: fmt.Sprintf("guid-%d", id), Name: name, Code: code, Selected: selected}
}

func step(id int, name string, attrs ...*domain.Attribute) *domain.Step {
	return &domain.Step{ID: id, Name: name, Attributes: attrs}
}

func attr(id int, name string, opts ...*domain.Option) *domain.Attribute {
	return &domain.Attribute{ID: id, Name: name, Enabled: true, Options: opts}
}

var testKnown = KnownNames{
	Bottles:  []string{"Antica", "Polo"},
	Liquids:  []string{"London Dry Gin", "Pink Gin"},
	Closures: []string{"Light Wood", "Dark Wood", "No Wax Seal", "Wax Sealed", "Wooden Closure"},
}

// bottleTree is a four-step wizard: bottle (5 Antica, 9 Polo), liquid, closure, label.
func bottleTree() []*domain.Group {
	return []*domain.Group{{
		ID:   1,
		Name: "Build Your Bottle",
		Steps: []*domain.Step{
			step(10, "Bottle", attr(100, "Bottle Shape",
				opt(5, "Antica", "bottles|antica", false),
				opt(9, "Polo", "bottles|polo", false),
			)),
			step(20, "Liquid", attr(200, "Spirit",
				opt(2000, domain.NoSelectionName, "", true),
				opt(2001, "London Dry Gin", "", false),
				opt(2002, "Pink Gin", "", false),
			)),
			step(30, "Closure", attr(300, "Closure",
				opt(3000, domain.NoSelectionName, "", true),
				opt(3001, "Light Wood", "", false),
				opt(3002, "Dark Wood", "", false),
			)),
			step(40, "Labels", attr(400, "Label Design",
				opt(4000, domain.NoSelectionName, "", true),
				opt(4001, "Antica Label", "labels|design_antica", false),
				opt(4002, "Polo Label", "labels|design_polo", false),
			)),
		},
	}}
}

func testProduct() *domain.Product {
	return &domain.Product{
		SKU:  "SS-GIN-70",
		Name: "Custom Gin",
		Areas: []*domain.Area{
			{ID: 501, Name: "antica_label_front"},
			{ID: 502, Name: "antica_label_back"},
			{ID: 601, Name: "polo_label_front"},
		},
	}
}

func price(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// fakeEngine is an in-memory engine that records every mutating call in order.
type fakeEngine struct {
	mu    sync.Mutex
	state domain.EngineState

	calls      []string
	failRemove map[string]bool
	failImage  error
	failAttach error
	failCart   error
	nextImage  int
	visible    map[int]bool
	meshes     map[string]string
	cart       domain.CartData
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		state: domain.EngineState{
			Groups:  bottleTree(),
			Product: testProduct(),
			Price:   price(10),
		},
		failRemove: map[string]bool{},
		nextImage:  77,
		visible:    map[int]bool{},
		meshes:     map[string]string{},
		cart:       domain.CartData{Preview: "data:image/png;base64,AA", Quantity: 1, Composition: "comp-1", Attributes: map[string]string{"Bottle": "Antica"}},
	}
}

func (e *fakeEngine) State() domain.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *fakeEngine) option(id int) (*domain.Attribute, *domain.Option) {
	for _, g := range e.state.Groups {
		for _, st := range g.Steps {
			for _, a := range st.Attributes {
				for _, o := range a.Options {
					if o.ID == id {
						return a, o
					}
				}
			}
		}
	}
	return nil, nil
}

func (e *fakeEngine) SelectOption(ctx context.Context, optionID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, o := e.option(optionID)
	if o == nil {
		return fmt.Errorf("option %d not found", optionID)
	}
	for _, other := range a.Options {
		other.Selected = false
	}
	o.Selected = true
	e.calls = append(e.calls, fmt.Sprintf("select:%d", optionID))
	return nil
}

func (e *fakeEngine) CreateImageFromURL(ctx context.Context, url string) (domain.Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "image:"+url)
	if e.failImage != nil {
		return domain.Image{}, e.failImage
	}
	return domain.Image{ImageID: e.nextImage, URL: url}, nil
}

func (e *fakeEngine) AddItemImage(ctx context.Context, imageID, areaID int) (*domain.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, fmt.Sprintf("attach:%d:%d", imageID, areaID))
	if e.failAttach != nil {
		return nil, e.failAttach
	}
	it := &domain.Item{GUID: fmt.Sprintf("item-%d", len(e.state.Items)+1), ImageID: imageID, AreaRefs: []any{float64(areaID)}}
	e.state.Items = append(e.state.Items, it)
	return it, nil
}

func (e *fakeEngine) RemoveItem(ctx context.Context, guid string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "remove:"+guid)
	if e.failRemove[guid] {
		return fmt.Errorf("remove %s refused", guid)
	}
	for _, it := range e.state.Items {
		if it.GUID == guid {
			it.Deleted = true
		}
	}
	return nil
}

func (e *fakeEngine) MeshIDByName(name string) (string, bool) {
	id, ok := e.meshes[name]
	return id, ok
}

func (e *fakeEngine) IsAreaVisible(areaID int) bool { return e.visible[areaID] }

func (e *fakeEngine) AddToCart(ctx context.Context, before func(context.Context, domain.CartData) (domain.CartData, error)) error {
	if e.failCart != nil {
		return e.failCart
	}
	_, err := before(ctx, e.cart)
	return err
}

func (e *fakeEngine) addItem(guid string, areaID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Items = append(e.state.Items, &domain.Item{GUID: guid, AreaRefs: []any{float64(areaID)}})
}

func (e *fakeEngine) setReady(ready bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.AssetsLoading = !ready
	e.state.SceneLoading = !ready
}

func (e *fakeEngine) resetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

func (e *fakeEngine) callLog() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

type recordingPoster struct {
	mu   sync.Mutex
	sent []domain.Envelope
	err  error
}

func (p *recordingPoster) Post(ctx context.Context, sessionID string, env domain.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, env)
	return p.err
}

func (p *recordingPoster) ofType(t string) []domain.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Envelope
	for _, env := range p.sent {
		if env.CustomMessageType == t {
			out = append(out, env)
		}
	}
	return out
}

// manualClock collects scheduled callbacks until the test runs them.
type manualClock struct {
	mu      sync.Mutex
	pending []func()
}

func (c *manualClock) after(_ time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, f)
}

func (c *manualClock) flush() int {
	c.mu.Lock()
	fs := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range fs {
		f()
	}
	return len(fs)
}

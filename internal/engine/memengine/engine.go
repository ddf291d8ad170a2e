package memengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Spirits-Studio/zakeke-lite/internal/catalog"
	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/httpx"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/pointers"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrUnknownImage  = errors.New("unknown image")
	ErrUnknownArea   = errors.New("unknown area")
	ErrUnknownItem   = errors.New("unknown item")
	ErrNotImage      = errors.New("content is not a supported image")
	ErrNotReady      = errors.New("configurator is not ready")
)

const (
	defaultMaxImageBytes = 10 << 20
	defaultFetchAttempts = 3
	defaultRetryBackoff  = 250 * time.Millisecond
	maxRetryWait         = 5 * time.Second
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// Signals are the readiness flags a renderer reports. Nil fields are left unchanged.
type Signals struct {
	SceneLoading  *bool `json:"isSceneLoading,omitempty"`
	AssetsLoading *bool `json:"isAssetsLoading,omitempty"`
	ViewerReady   *bool `json:"isViewerReady,omitempty"`
}

type storedImage struct {
	meta domain.Image
	data []byte
}

// Cart is one submitted cart payload.
type Cart struct {
	At   time.Time
	Data domain.CartData
}

type Options struct {
	HTTPClient    *http.Client
	MaxImageBytes int64
	// FetchAttempts bounds image downloads retried on 408, 429, 5xx and timeouts.
	FetchAttempts int
	RetryBackoff  time.Duration
	Log           *logger.Logger
	// StartLoading makes the engine report scene and assets loading until signalled.
	StartLoading bool
}

// Engine is an in-process configuration engine over one catalog product.
type Engine struct {
	mu sync.RWMutex

	log      *logger.Logger
	client   *http.Client
	maxBytes int64
	attempts int
	backoff  time.Duration

	groups     []*domain.Group
	product    *domain.Product
	basePrice  float64
	prices     map[int]float64
	visibility map[int][]int
	meshes     map[string]string
	areas      map[int]bool

	items       []*domain.Item
	images      map[int]storedImage
	nextImageID int
	carts       []Cart

	sceneLoading  bool
	assetsLoading bool
	viewerReady   *bool
}

func New(def *catalog.ProductDef, opts Options) (*Engine, error) {
	if def == nil {
		return nil, errors.New("product definition required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}
	if opts.FetchAttempts <= 0 {
		opts.FetchAttempts = defaultFetchAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	e := &Engine{
		log:           opts.Log.With("component", "MemEngine", "product", def.Code),
		client:        opts.HTTPClient,
		maxBytes:      opts.MaxImageBytes,
		attempts:      opts.FetchAttempts,
		backoff:       opts.RetryBackoff,
		groups:        def.Tree(),
		product:       def.Product(),
		basePrice:     def.BasePrice,
		prices:        def.OptionPrices(),
		visibility:    def.AreaVisibility(),
		meshes:        map[string]string{},
		areas:         map[int]bool{},
		images:        map[int]storedImage{},
		nextImageID:   1,
		sceneLoading:  opts.StartLoading,
		assetsLoading: opts.StartLoading,
	}
	for k, v := range def.Meshes {
		e.meshes[k] = v
	}
	for _, a := range e.product.Areas {
		e.areas[a.ID] = true
	}
	return e, nil
}

func (e *Engine) State() domain.EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := domain.EngineState{
		Groups:        cloneGroups(e.groups),
		Product:       cloneProduct(e.product),
		Items:         cloneItems(e.items),
		SceneLoading:  e.sceneLoading,
		AssetsLoading: e.assetsLoading,
	}
	if e.viewerReady != nil {
		st.ViewerReady = pointers.Ptr(*e.viewerReady)
	}
	if !e.assetsLoading {
		p := e.priceLocked()
		st.Price = &p
	}
	return st
}

func (e *Engine) priceLocked() float64 {
	total := e.basePrice
	for _, o := range e.selectedLocked() {
		total += e.prices[o.ID]
	}
	return total
}

func (e *Engine) selectedLocked() []*domain.Option {
	var out []*domain.Option
	for _, g := range e.groups {
		for _, s := range g.Steps {
			for _, o := range s.Options() {
				if o.Selected {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// SelectOption selects the option and clears its siblings in the same attribute.
func (e *Engine) SelectOption(ctx context.Context, optionID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, g := range e.groups {
		for _, s := range g.Steps {
			for _, a := range s.Attributes {
				for _, o := range a.Options {
					if o.ID != optionID {
						continue
					}
					for _, sib := range a.Options {
						sib.Selected = sib.ID == optionID
					}
					return nil
				}
			}
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownOption, optionID)
}

// CreateImageFromURL fetches the remote image and registers it. Only PNG and JPEG
// content is accepted, whatever the server claims.
func (e *Engine) CreateImageFromURL(ctx context.Context, rawURL string) (domain.Image, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Image{}, fmt.Errorf("invalid image url %q", rawURL)
	}
	data, err := e.fetch(ctx, u.String())
	if err != nil {
		return domain.Image{}, err
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return domain.Image{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	img := domain.Image{ImageID: e.nextImageID, URL: u.String(), Mime: mt.String()}
	e.nextImageID++
	e.images[img.ImageID] = storedImage{meta: img, data: bytes.Clone(data)}
	e.log.Debug("Image created", "image_id", img.ImageID, "mime", img.Mime, "bytes", len(data))
	return img, nil
}

// statusError carries a non-2xx download status for retry classification.
type statusError struct{ code int }

func (e *statusError) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e *statusError) HTTPStatusCode() int { return e.code }

func (e *Engine) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		data, resp, err := e.fetchOnce(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil || attempt >= e.attempts || !httpx.IsRetryableError(err) {
			return nil, fmt.Errorf("fetch image: %w", err)
		}
		wait := httpx.JitterSleep(httpx.RetryAfterDuration(resp, e.backoff*time.Duration(attempt), maxRetryWait))
		e.log.Debug("Retrying image fetch", "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch image: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// fetchOnce returns the response (body already closed) so callers can read Retry-After.
func (e *Engine) fetchOnce(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp, &statusError{code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, resp, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, resp, fmt.Errorf("image exceeds %d bytes", e.maxBytes)
	}
	return data, resp, nil
}

func (e *Engine) AddItemImage(ctx context.Context, imageID, areaID int) (*domain.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	img, ok := e.images[imageID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownImage, imageID)
	}
	if !e.areas[areaID] {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArea, areaID)
	}
	it := &domain.Item{
		GUID:     uuid.NewString(),
		Name:     img.meta.URL,
		ImageID:  imageID,
		AreaRefs: []any{areaID},
	}
	e.items = append(e.items, it)
	return cloneItem(it), nil
}

func (e *Engine) RemoveItem(ctx context.Context, guid string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, it := range e.items {
		if it.GUID == guid {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownItem, guid)
}

func (e *Engine) MeshIDByName(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.meshes[name]
	return id, ok
}

// IsAreaVisible reports whether the area shows on the current model.
func (e *Engine) IsAreaVisible(areaID int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.areas[areaID] {
		return false
	}
	revealers, gated := e.visibility[areaID]
	if !gated {
		return true
	}
	selected := map[int]bool{}
	for _, o := range e.selectedLocked() {
		selected[o.ID] = true
	}
	for _, id := range revealers {
		if selected[id] {
			return true
		}
	}
	return false
}

// SetSignals applies renderer readiness flags.
func (e *Engine) SetSignals(sig Signals) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sig.SceneLoading != nil {
		e.sceneLoading = *sig.SceneLoading
	}
	if sig.AssetsLoading != nil {
		e.assetsLoading = *sig.AssetsLoading
	}
	if sig.ViewerReady != nil {
		e.viewerReady = pointers.Ptr(*sig.ViewerReady)
	}
}

// AddToCart renders a preview, lets before amend the payload, then records the cart.
// A before error aborts the submission.
func (e *Engine) AddToCart(ctx context.Context, before func(context.Context, domain.CartData) (domain.CartData, error)) error {
	e.mu.RLock()
	if e.sceneLoading || e.assetsLoading {
		e.mu.RUnlock()
		return ErrNotReady
	}
	lines := e.summaryLinesLocked()
	var art [][]byte
	for _, it := range e.items {
		if img, ok := e.images[it.ImageID]; ok {
			art = append(art, img.data)
		}
	}
	attrs := e.attributeSelectionsLocked()
	e.mu.RUnlock()

	preview, err := renderPreview(lines, art)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	data := domain.CartData{
		Preview:     preview,
		Quantity:    1,
		Composition: uuid.NewString(),
		Attributes:  attrs,
	}
	if before != nil {
		if data, err = before(ctx, data); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.carts = append(e.carts, Cart{At: time.Now(), Data: data})
	e.mu.Unlock()
	e.log.Info("Cart submitted", "composition", data.Composition, "attributes", len(data.Attributes))
	return nil
}

// Carts returns the submitted carts, oldest first.
func (e *Engine) Carts() []Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Cart(nil), e.carts...)
}

func (e *Engine) attributeSelectionsLocked() map[string]string {
	out := map[string]string{}
	for _, g := range e.groups {
		for _, s := range g.Steps {
			for _, a := range s.Attributes {
				for _, o := range a.Options {
					if o.Selected && !o.IsNoSelection() {
						out[a.Name] = o.Name
					}
				}
			}
		}
	}
	return out
}

func (e *Engine) summaryLinesLocked() []string {
	lines := []string{e.product.Name}
	for _, g := range e.groups {
		for _, s := range g.Steps {
			for _, a := range s.Attributes {
				if !a.Enabled {
					continue
				}
				for _, o := range a.Options {
					if o.Selected && !o.IsNoSelection() {
						lines = append(lines, fmt.Sprintf("%s: %s", s.Name, o.Name))
					}
				}
			}
		}
	}
	return lines
}

func cloneGroups(in []*domain.Group) []*domain.Group {
	out := make([]*domain.Group, 0, len(in))
	for _, g := range in {
		cg := *g
		cg.Steps = make([]*domain.Step, 0, len(g.Steps))
		for _, s := range g.Steps {
			cs := *s
			cs.Attributes = make([]*domain.Attribute, 0, len(s.Attributes))
			for _, a := range s.Attributes {
				ca := *a
				ca.Options = make([]*domain.Option, 0, len(a.Options))
				for _, o := range a.Options {
					co := *o
					ca.Options = append(ca.Options, &co)
				}
				cs.Attributes = append(cs.Attributes, &ca)
			}
			cg.Steps = append(cg.Steps, &cs)
		}
		out = append(out, &cg)
	}
	return out
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Areas = make([]*domain.Area, 0, len(p.Areas))
	for _, a := range p.Areas {
		ca := *a
		cp.Areas = append(cp.Areas, &ca)
	}
	return &cp
}

func cloneItem(it *domain.Item) *domain.Item {
	c := *it
	c.AreaRefs = append([]any(nil), it.AreaRefs...)
	return &c
}

func cloneItems(in []*domain.Item) []*domain.Item {
	out := make([]*domain.Item, 0, len(in))
	for _, it := range in {
		out = append(out, cloneItem(it))
	}
	return out
}

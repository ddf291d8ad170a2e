package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Spirits-Studio/zakeke-lite/internal/catalog"
	"github.com/Spirits-Studio/zakeke-lite/internal/engine/memengine"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrForbidden       = errors.New("token does not grant access to this session")
)

const defaultIdleTTL = 2 * time.Hour

type SessionService interface {
	Create(ctx context.Context, productCode string) (*CreatedSession, error)
	Get(id string) (*SessionEntry, error)
	Authorize(id, token string) error
	Close(id string) bool
	Count() int
	SweepIdle(now time.Time) int
	RunSweeper(ctx context.Context, every time.Duration) error
}

// SessionEntry is one live configurator: its reactor plus the engine it drives.
type SessionEntry struct {
	ID          string
	ProductCode string
	Session     *configurator.Session
	Engine      *memengine.Engine
	CreatedAt   time.Time

	lastSeen atomic.Int64
}

func (e *SessionEntry) touch(now time.Time) { e.lastSeen.Store(now.UnixNano()) }

func (e *SessionEntry) LastSeen() time.Time { return time.Unix(0, e.lastSeen.Load()) }

type CreatedSession struct {
	ID        string            `json:"session"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	View      configurator.View `json:"view"`
}

type SessionServiceConfig struct {
	Catalog     *catalog.Catalog
	Store       configurator.OrderStore
	Poster      configurator.Poster
	Origins     configurator.OriginPolicy
	Tokens      *SessionTokens
	IdleTTL     time.Duration
	SettleDelay time.Duration
	// WaitForSignals starts engines in the loading state until readiness flags arrive.
	WaitForSignals bool
	HTTPClient     *http.Client
	// OnClose runs after a session is dropped, for per-session cleanup elsewhere.
	OnClose []func(ctx context.Context, id string)
}

type sessionService struct {
	log *logger.Logger
	cfg SessionServiceConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*SessionEntry
}

func NewSessionService(log *logger.Logger, cfg SessionServiceConfig) (SessionService, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("session tokens required")
	}
	if cfg.Store == nil {
		cfg.Store = configurator.NewMemoryOrderStore()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	return &sessionService{
		log:      log.With("service", "SessionService"),
		cfg:      cfg,
		now:      time.Now,
		sessions: map[string]*SessionEntry{},
	}, nil
}

func (ss *sessionService) Create(ctx context.Context, productCode string) (*CreatedSession, error) {
	def, err := ss.cfg.Catalog.Product(productCode)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	sessionLog := ss.log.With("session", id, "product", def.Code)

	engine, err := memengine.New(def, memengine.Options{
		HTTPClient:   ss.cfg.HTTPClient,
		Log:          sessionLog,
		StartLoading: ss.cfg.WaitForSignals,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	sess, err := configurator.NewSession(configurator.Config{
		ID:                id,
		Engine:            engine,
		Store:             ss.cfg.Store,
		Poster:            ss.cfg.Poster,
		Origins:           ss.cfg.Origins,
		Known:             ss.cfg.Catalog.KnownNames(),
		DefaultBottleSlug: ss.cfg.Catalog.DefaultBottleSlug,
		Notes:             ss.cfg.Catalog.OptionNotes(),
		Log:               ss.log.With("product", def.Code),
		SettleDelay:       ss.cfg.SettleDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, exp, err := ss.cfg.Tokens.Issue(id)
	if err != nil {
		return nil, err
	}

	entry := &SessionEntry{
		ID:          id,
		ProductCode: def.Code,
		Session:     sess,
		Engine:      engine,
		CreatedAt:   ss.now(),
	}
	entry.touch(entry.CreatedAt)
	if h, ok := ss.cfg.Store.(*HistoryOrderStore); ok {
		h.Track(id, def.Code)
	}

	ss.mu.Lock()
	ss.sessions[id] = entry
	ss.mu.Unlock()

	sess.Sync(ctx)
	sessionLog.Info("Session created")
	return &CreatedSession{ID: id, Token: token, ExpiresAt: exp, View: sess.View()}, nil
}

func (ss *sessionService) Get(id string) (*SessionEntry, error) {
	ss.mu.RLock()
	entry, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.touch(ss.now())
	return entry, nil
}

// Authorize checks that token was issued for session id.
func (ss *sessionService) Authorize(id, token string) error {
	sub, err := ss.cfg.Tokens.Verify(token)
	if err != nil {
		return err
	}
	if sub != id {
		return ErrForbidden
	}
	return nil
}

func (ss *sessionService) Close(id string) bool {
	ss.mu.Lock()
	_, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()
	if !ok {
		return false
	}
	ss.afterClose(id)
	return true
}

func (ss *sessionService) afterClose(id string) {
	if h, ok := ss.cfg.Store.(*HistoryOrderStore); ok {
		h.Untrack(id)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, fn := range ss.cfg.OnClose {
		fn(ctx, id)
	}
	ss.log.Info("Session closed", "session", id)
}

func (ss *sessionService) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// SweepIdle drops sessions not seen within the idle TTL and reports how many went.
func (ss *sessionService) SweepIdle(now time.Time) int {
	cutoff := now.Add(-ss.cfg.IdleTTL)
	var expired []string
	ss.mu.Lock()
	for id, e := range ss.sessions {
		if e.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(ss.sessions, id)
		}
	}
	ss.mu.Unlock()
	for _, id := range expired {
		ss.afterClose(id)
	}
	if len(expired) > 0 {
		ss.log.Info("Swept idle sessions", "count", len(expired))
	}
	return len(expired)
}

func (ss *sessionService) RunSweeper(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			ss.SweepIdle(t)
		}
	}
}

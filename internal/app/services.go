package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Spirits-Studio/zakeke-lite/internal/catalog"
	"github.com/Spirits-Studio/zakeke-lite/internal/clients/redis"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime"
	"github.com/Spirits-Studio/zakeke-lite/internal/services"
)

type Services struct {
	Catalog  *catalog.Catalog
	Store    configurator.OrderStore
	Emitter  services.SSEEmitter
	Tokens   *services.SessionTokens
	Sessions services.SessionService

	// forget drops per-session order state from the backing store.
	forget func(ctx context.Context, sessionID string)
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return Services{}, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("Catalog loaded", "products", strings.Join(cat.ProductCodes(), ","), "path", cfg.CatalogPath)

	var (
		store  configurator.OrderStore
		forget func(ctx context.Context, sessionID string)
	)
	if clients.Redis != nil {
		rs, err := redis.NewOrderStore(clients.Redis, log, cfg.OrderTTL)
		if err != nil {
			return Services{}, fmt.Errorf("init order store: %w", err)
		}
		store = rs
		forget = func(ctx context.Context, sid string) {
			if err := rs.Forget(ctx, sid); err != nil {
				log.Warn("Forget order state failed", "session", sid, "error", err)
			}
		}
	} else {
		ms := configurator.NewMemoryOrderStore()
		store = ms
		forget = func(_ context.Context, sid string) { ms.Forget(sid) }
	}
	if reposet.OrderHistory != nil {
		store = services.NewHistoryOrderStore(store, reposet.OrderHistory, log)
	}

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus}
	}

	secret := cfg.SessionSecret
	if strings.TrimSpace(secret) == "" {
		// Tokens from a random secret die with the process and are not shared across instances.
		log.Warn("SESSION_SECRET not set; using an ephemeral secret")
		secret = uuid.NewString() + uuid.NewString()
	}
	tokens, err := services.NewSessionTokens(secret, cfg.SessionTTL)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Catalog: cat,
		Store:   store,
		Emitter: emitter,
		Tokens:  tokens,
		forget:  forget,
	}, nil
}

// wireSessions builds the session registry last so its close hooks can reach the
// realtime handler.
func wireSessions(log *logger.Logger, cfg Config, svcs *Services, onClose ...func(ctx context.Context, id string)) error {
	hooks := append([]func(ctx context.Context, id string){svcs.forget}, onClose...)
	sessions, err := services.NewSessionService(log, services.SessionServiceConfig{
		Catalog:        svcs.Catalog,
		Store:          svcs.Store,
		Poster:         &services.OutboundPoster{Emitter: svcs.Emitter},
		Origins:        configurator.NewOriginPolicy(cfg.ParentOrigins, cfg.PublicOrigin),
		Tokens:         svcs.Tokens,
		IdleTTL:        cfg.SessionIdleTTL,
		SettleDelay:    cfg.SettleDelay,
		WaitForSignals: cfg.WaitForSignals,
		HTTPClient:     &http.Client{Timeout: cfg.ImageFetchTimeout},
		OnClose:        hooks,
	})
	if err != nil {
		return fmt.Errorf("init session service: %w", err)
	}
	svcs.Sessions = sessions
	return nil
}

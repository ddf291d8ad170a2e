package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apphttp "github.com/Spirits-Studio/zakeke-lite/internal/http"
	httpH "github.com/Spirits-Studio/zakeke-lite/internal/http/handlers"
	"github.com/Spirits-Studio/zakeke-lite/internal/observability"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewWithRedaction(cfg.LogMode, logger.Redaction{
		Enabled:  cfg.LogRedactionEnabled,
		HashSalt: cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel.Config(Version))

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(clients, log)
	ssehub := realtime.NewSSEHub(log)

	serviceset, err := wireServices(log, cfg, clients, reposet, ssehub)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	realtimeHandler := httpH.NewRealtimeHandler(log, ssehub)
	if err := wireSessions(log, cfg, &serviceset, disconnectStream(realtimeHandler)); err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, realtimeHandler)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       ssehub,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP, sweeps idle sessions and, with redis, forwards outbound messages from
// every instance into the local hub. It returns when ctx ends or any part fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	g.Go(func() error {
		return a.Services.Sessions.RunSweeper(gctx, a.Cfg.SweepInterval)
	})
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

package app

import (
	"context"

	apphttp "github.com/Spirits-Studio/zakeke-lite/internal/http"
	httpH "github.com/Spirits-Studio/zakeke-lite/internal/http/handlers"
	httpMW "github.com/Spirits-Studio/zakeke-lite/internal/http/middleware"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Session  *httpH.SessionHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, svcs Services, realtimeHandler *httpH.RealtimeHandler) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(svcs.Sessions),
		Session:  httpH.NewSessionHandler(log, svcs.Sessions),
		Realtime: realtimeHandler,
	}
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svcs.Sessions),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(cfg.HTTPAddr, apphttp.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.ParentOrigins,
		AuthMiddleware:  middleware.Auth,
		SessionHandler:  handlers.Session,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	})
}

// disconnectStream ends a closed session's event stream and drops its queued messages.
func disconnectStream(h *httpH.RealtimeHandler) func(ctx context.Context, id string) {
	return func(_ context.Context, id string) { h.Disconnect(id) }
}

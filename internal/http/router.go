package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Spirits-Studio/zakeke-lite/internal/http/handlers"
	httpMW "github.com/Spirits-Studio/zakeke-lite/internal/http/middleware"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	// AllowedOrigins feeds CORS. Empty disables the CORS middleware.
	AllowedOrigins []string

	AuthMiddleware  *httpMW.AuthMiddleware
	SessionHandler  *httpH.SessionHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.SessionHandler != nil {
		api.POST("/sessions", cfg.SessionHandler.Create)
	}

	session := api.Group("/sessions/:id")
	{
		if cfg.AuthMiddleware != nil {
			session.Use(cfg.AuthMiddleware.RequireSession())
		}

		if cfg.SessionHandler != nil {
			session.GET("", cfg.SessionHandler.Get)
			session.DELETE("", cfg.SessionHandler.Close)

			session.POST("/options/:optionID", cfg.SessionHandler.SelectOption)
			session.POST("/steps/next", cfg.SessionHandler.NextStep)
			session.POST("/steps/prev", cfg.SessionHandler.PrevStep)
			session.POST("/steps/:stepID", cfg.SessionHandler.SelectStep)
			session.POST("/signals", cfg.SessionHandler.Signals)
			session.POST("/messages", cfg.SessionHandler.Message)

			session.POST("/design-with-ai", cfg.SessionHandler.DesignWithAI)
			session.POST("/upload-labels", cfg.SessionHandler.UploadLabels)
			session.POST("/cart", cfg.SessionHandler.AddToCart)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			session.GET("/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}

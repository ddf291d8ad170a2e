package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/platform/ctxutil"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		td := ctxutil.GetTraceData(c.Request.Context())
		sd := ctxutil.GetSessionData(c.Request.Context())

		fields := []interface{}{
			"route", path,
			"method", strings.ToUpper(c.Request.Method),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td != nil {
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if sd != nil && sd.SessionID != "" {
			fields = append(fields, "session_id", sd.SessionID)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

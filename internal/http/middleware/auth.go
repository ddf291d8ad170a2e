package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/http/response"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/ctxutil"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewAuthMiddleware(log *logger.Logger, sessions services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), sessions: sessions}
}

// RequireSession admits requests whose token was issued for the :id session.
func (am *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.Param("id"))
		token := extractTokenFromAll(c)
		if token == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			c.Abort()
			return
		}
		if err := am.sessions.Authorize(sessionID, token); err != nil {
			status, code := http.StatusUnauthorized, "unauthorized"
			if errors.Is(err, services.ErrForbidden) {
				status, code = http.StatusForbidden, "forbidden"
			}
			am.log.Debug("Session token rejected", "session", sessionID, "error", err)
			response.RespondError(c, status, code, err)
			c.Abort()
			return
		}
		ctx := ctxutil.WithSessionData(c.Request.Context(), &ctxutil.SessionData{SessionID: sessionID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/services"
)

type HealthHandler struct {
	sessions services.SessionService
}

func NewHealthHandler(sessions services.SessionService) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.sessions != nil {
		c.Header("X-Active-Sessions", strconv.Itoa(h.sessions.Count()))
	}
	c.String(http.StatusOK, "ok")
}

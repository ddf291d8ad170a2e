package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime"
)

// RealtimeHandler serves the outbound event stream a parent page bridge listens on.
type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[string]*realtime.SSEClient // key: configurator session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Hub:     hub,
		clients: make(map[string]*realtime.SSEClient),
	}
}

// GET /api/sessions/:id/events
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	sessionID := c.Param("id")

	h.mu.Lock()
	// A reconnecting bridge replaces its previous stream.
	if existing, ok := h.clients[sessionID]; ok {
		h.Hub.CloseClient(existing)
	}
	client := h.Hub.NewSSEClient(sessionID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.Log.Info("SSEStream open", "session", sessionID, "client_id", client.ID.String())
	h.Hub.AddChannel(client, sessionID)

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.Hub.CloseClient(client)
	h.Log.Info("SSEStream closed", "session", sessionID, "client_id", client.ID.String())
}

// Disconnect ends the session's stream, if any. Used when the session closes.
func (h *RealtimeHandler) Disconnect(sessionID string) {
	h.mu.Lock()
	client, ok := h.clients[sessionID]
	delete(h.clients, sessionID)
	h.mu.Unlock()
	if ok {
		h.Hub.CloseClient(client)
	}
	h.Hub.Forget(sessionID)
}

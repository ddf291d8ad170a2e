package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/catalog"
	"github.com/Spirits-Studio/zakeke-lite/internal/engine/memengine"
	"github.com/Spirits-Studio/zakeke-lite/internal/http/response"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/services"
)

// maxMessageBytes caps an inbound cross-document message body.
const maxMessageBytes = 1 << 20

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), sessions: sessions}
}

// ActionResponse is returned by every user action and inbound message.
type ActionResponse struct {
	configurator.Outcome
	View configurator.View `json:"view"`
}

type createSessionRequest struct {
	Product string `json:"product"`
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	req.Product = strings.TrimSpace(req.Product)
	if req.Product == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("product is required"))
		return
	}
	created, err := h.sessions.Create(c.Request.Context(), req.Product)
	if err != nil {
		if !errors.Is(err, catalog.ErrUnknownProduct) {
			h.log.Error("Create session failed", "product", req.Product, "error", err)
		}
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondCreated(c, created)
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	response.RespondOK(c, entry.Session.View())
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	if !h.sessions.Close(c.Param("id")) {
		response.RespondAPIError(c, toAPIError(services.ErrSessionNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sessions/:id/options/:optionID
func (h *SessionHandler) SelectOption(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	optionID, ok := intParam(c, "optionID")
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.SelectOption(c.Request.Context(), optionID))
}

// POST /api/sessions/:id/steps/:stepID
func (h *SessionHandler) SelectStep(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	stepID, ok := intParam(c, "stepID")
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.SelectStep(c.Request.Context(), stepID))
}

// POST /api/sessions/:id/steps/next
func (h *SessionHandler) NextStep(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.NextStep(c.Request.Context()))
}

// POST /api/sessions/:id/steps/prev
func (h *SessionHandler) PrevStep(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.PrevStep(c.Request.Context()))
}

// POST /api/sessions/:id/signals
func (h *SessionHandler) Signals(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	var sig memengine.Signals
	if err := c.ShouldBindJSON(&sig); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	entry.Engine.SetSignals(sig)
	entry.Session.Sync(c.Request.Context())
	response.RespondOK(c, entry.Session.View())
}

// POST /api/sessions/:id/messages
//
// The body is the raw cross-document message and the Origin header is the sender's
// origin as the page bridge observed it.
func (h *SessionHandler) Message(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "message_too_large", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	origin := c.GetHeader("Origin")
	h.respondOutcome(c, entry, entry.Session.HandleMessage(c.Request.Context(), origin, raw))
}

// POST /api/sessions/:id/design-with-ai
func (h *SessionHandler) DesignWithAI(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.DesignWithAI(c.Request.Context()))
}

// POST /api/sessions/:id/upload-labels
func (h *SessionHandler) UploadLabels(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.UploadLabels(c.Request.Context()))
}

// POST /api/sessions/:id/cart
func (h *SessionHandler) AddToCart(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	h.respondOutcome(c, entry, entry.Session.AddToCart(c.Request.Context()))
}

// respondOutcome always answers 200: a refused action is a normal result carrying a
// reason and the view the client should render.
func (h *SessionHandler) respondOutcome(c *gin.Context, entry *services.SessionEntry, out configurator.Outcome) {
	if !out.Accepted {
		h.log.Debug("Action not accepted", "session", entry.ID, "route", c.FullPath(), "reason", out.Reason)
	}
	response.RespondOK(c, ActionResponse{Outcome: out, View: entry.Session.View()})
}

func (h *SessionHandler) entry(c *gin.Context) (*services.SessionEntry, bool) {
	entry, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return nil, false
	}
	return entry, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+strings.ToLower(name), err)
		return 0, false
	}
	return v, true
}

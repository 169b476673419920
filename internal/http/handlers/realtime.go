package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

// RealtimeHandler serves the per-session agent event stream. Events reach it
// through the hub, either broadcast locally or forwarded from the bus.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/ai/agent-stream?sessionId=
func (h *RealtimeHandler) AgentStream(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_session_id", errors.New("Session ID required"))
		return
	}

	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, sessionID)
	m := observability.Current()
	m.SSEClientDelta(1)
	defer func() {
		h.hub.CloseClient(client)
		m.SSEClientDelta(-1)
	}()

	h.log.Debug("Agent stream open", "session_id", sessionID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.log.Debug("Agent stream closed", "session_id", sessionID)
}

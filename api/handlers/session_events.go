package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/mediafetch-go/internal/app"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionEventsHandler streams session events over WebSocket
type SessionEventsHandler struct {
	session *app.DownloadSession
	logger  *zap.Logger
}

// NewSessionEventsHandler creates a new event stream handler
func NewSessionEventsHandler(session *app.DownloadSession, logger *zap.Logger) *SessionEventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionEventsHandler{
		session: session,
		logger:  logger,
	}
}

// HandleWebSocket handles GET /api/v1/session/events
func (h *SessionEventsHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.session.Subscribe()
	defer cancel()

	h.logger.Info("WebSocket client connected", zap.String("remote_addr", c.Request.RemoteAddr))

	// The current state goes first so clients can render before any change
	snap := h.session.Snapshot()
	initial := domain.NewSessionEvent(domain.EventState, snap.State)
	initial.Progress = &snap.Progress
	initial.Notice = snap.LastNotice
	initial.Error = snap.LastError
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// Reads only detect the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("Failed to send session event", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			h.logger.Info("WebSocket client disconnected", zap.String("remote_addr", c.Request.RemoteAddr))
			return
		}
	}
}

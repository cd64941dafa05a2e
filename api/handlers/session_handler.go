package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediafetch-go/internal/app"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// SessionHandler exposes the download session over HTTP
type SessionHandler struct {
	session *app.DownloadSession
	baseCtx context.Context
	logger  *zap.Logger
}

// NewSessionHandler creates a session handler. Background downloads run
// under baseCtx rather than the request context.
func NewSessionHandler(session *app.DownloadSession, baseCtx context.Context, logger *zap.Logger) *SessionHandler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		session: session,
		baseCtx: baseCtx,
		logger:  logger,
	}
}

// SubmitRequest represents a URL submission
type SubmitRequest struct {
	URL string `json:"url" binding:"required"`
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Submit handles POST /api/v1/session/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.session.Submit(c.Request.Context(), req.URL); err != nil {
		status := statusForError(err)
		h.logger.Warn("Submission rejected",
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Error(err))

		var fetchErr *domain.MetadataFetchError
		if errors.As(err, &fetchErr) {
			c.JSON(status, gin.H{"error": fetchErr.Message, "session": h.session.Snapshot()})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Download handles POST /api/v1/session/download
func (h *SessionHandler) Download(c *gin.Context) {
	done, err := h.session.StartDownload(h.baseCtx)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	go func() {
		outcome := <-done
		h.logger.Info("Background download finished",
			zap.String("outcome", string(outcome.Kind)),
			zap.String("file", outcome.FilePath))
	}()

	c.JSON(http.StatusAccepted, h.session.Snapshot())
}

func statusForError(err error) int {
	var fetchErr *domain.MetadataFetchError
	switch {
	case errors.Is(err, domain.ErrEmptyURL), errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSubmissionIgnored),
		errors.Is(err, domain.ErrDownloadInProgress),
		errors.Is(err, domain.ErrNoPreview):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

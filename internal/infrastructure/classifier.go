package infrastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

const maxStructuredBody = 1 << 20

// ResponseClassifier maps a provider response to a DownloadOutcome
type ResponseClassifier struct {
	authMarkers      []string
	missingOutputKey string
	maxErrorBody     int64
	logger           *zap.Logger
}

// NewResponseClassifier creates a classifier from configuration
func NewResponseClassifier(config domain.ClassifierConfig, logger *zap.Logger) *ResponseClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	markers := config.AuthMarkers
	if len(markers) == 0 {
		markers = domain.DefaultAuthMarkers
	}
	lowered := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			lowered = append(lowered, strings.ToLower(m))
		}
	}

	key := config.MissingOutputKey
	if key == "" {
		key = "missingOutput"
	}
	maxBody := config.MaxErrorBody
	if maxBody <= 0 {
		maxBody = 64 * 1024
	}

	return &ResponseClassifier{
		authMarkers:      lowered,
		missingOutputKey: key,
		maxErrorBody:     maxBody,
		logger:           logger,
	}
}

// Classify inspects resp and returns its outcome. For OutcomeSuccess the body
// is handed over unread in the outcome's Stream; every other body is read and
// closed here.
func (c *ResponseClassifier) Classify(resp *http.Response) domain.DownloadOutcome {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyFailure(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if isStructured(contentType) {
		return c.classifyStructured(resp)
	}

	outcome := domain.SuccessOutcome(resp.Body, parseContentLength(resp.Header.Get("Content-Length")))
	outcome.ContentType = contentType
	outcome.Filename = parseFilename(resp.Header.Get("Content-Disposition"))
	return outcome
}

func (c *ResponseClassifier) classifyFailure(resp *http.Response) domain.DownloadOutcome {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxErrorBody))
	if err != nil {
		// Classify whatever arrived before the failure
		c.logger.Debug("Failed to read provider error body",
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes_read", len(body)),
			zap.Error(err))
	}
	text := string(body)

	if c.hasAuthMarker(text) {
		return domain.AuthRequiredOutcome(strings.TrimSpace(firstLine(errorField(body, text))))
	}

	message := errorField(body, "")
	if message == "" {
		message = fmt.Sprintf("provider returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return domain.GenericFailureOutcome(message)
}

func (c *ResponseClassifier) classifyStructured(resp *http.Response) domain.DownloadOutcome {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStructuredBody))
	if err != nil {
		return domain.GenericFailureOutcome(fmt.Sprintf("failed to read provider response: %v", err))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.GenericFailureOutcome("provider returned malformed JSON")
	}

	if truthy(payload[c.missingOutputKey]) {
		return domain.MissingOutputOutcome()
	}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		if c.hasAuthMarker(msg) {
			return domain.AuthRequiredOutcome(msg)
		}
		return domain.GenericFailureOutcome(msg)
	}
	return domain.GenericFailureOutcome("provider returned data instead of a media stream")
}

func (c *ResponseClassifier) hasAuthMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range c.authMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isStructured reports whether the content type is JSON rather than media
func isStructured(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func parseContentLength(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// errorField returns the "error" string of a JSON body, or fallback
func errorField(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "1"
	case float64:
		return val != 0
	}
	return false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

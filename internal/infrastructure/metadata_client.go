package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// metadataResponse is the wire shape of the metadata endpoint
type metadataResponse struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Length     *float64 `json:"length"`
	Thumbnail  string   `json:"thumbnail"`
	DownloadID string   `json:"download_id"`
	Error      string   `json:"error"`
}

// HTTPMetadataClient fetches preview metadata from the backend
type HTTPMetadataClient struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHTTPMetadataClient creates a metadata client for {baseURL}{metadataPath}
func NewHTTPMetadataClient(client *http.Client, config domain.BackendConfig, timeout time.Duration, logger *zap.Logger) *HTTPMetadataClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPMetadataClient{
		client:   client,
		endpoint: joinEndpoint(config.BaseURL, config.MetadataPath),
		timeout:  timeout,
		logger:   logger,
	}
}

// FetchMetadata posts the URL as form data and parses the preview.
// All failures are returned as *domain.MetadataFetchError.
func (c *HTTPMetadataClient) FetchMetadata(ctx context.Context, req domain.MediaRequest) (*domain.MediaMetadata, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set("url", req.URL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.MetadataFetchError{Message: domain.DefaultMetadataError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Metadata request failed", zap.String("url", req.URL), zap.Error(err))
		return nil, &domain.MetadataFetchError{Message: domain.DefaultMetadataError, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStructuredBody))
	if err != nil {
		return nil, &domain.MetadataFetchError{
			Message:    domain.DefaultMetadataError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read metadata response: %w", err),
		}
	}

	var payload metadataResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := domain.DefaultMetadataError
		if decodeErr == nil && payload.Error != "" {
			message = payload.Error
		}
		return nil, &domain.MetadataFetchError{Message: message, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return nil, &domain.MetadataFetchError{
			Message:    domain.DefaultMetadataError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode metadata: %w", decodeErr),
		}
	}
	if payload.DownloadID == "" {
		return nil, &domain.MetadataFetchError{
			Message:    domain.DefaultMetadataError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("metadata response has no download_id"),
		}
	}

	meta := &domain.MediaMetadata{
		Title:        payload.Title,
		Author:       payload.Author,
		ThumbnailURL: payload.Thumbnail,
		DownloadID:   payload.DownloadID,
		SourceURL:    req.URL,
	}
	if payload.Length != nil {
		seconds := int(*payload.Length)
		meta.DurationSeconds = &seconds
	}

	c.logger.Info("Metadata fetched",
		zap.String("url", req.URL),
		zap.String("title", meta.Title),
		zap.String("download_id", meta.DownloadID))

	return meta, nil
}

func joinEndpoint(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

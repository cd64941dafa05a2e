package infrastructure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// HTTPProviderClient performs provider attempts over HTTP
type HTTPProviderClient struct {
	client     *http.Client
	classifier *ResponseClassifier
	logger     *zap.Logger
}

// NewHTTPProviderClient creates a provider client
func NewHTTPProviderClient(client *http.Client, classifier *ResponseClassifier, logger *zap.Logger) *HTTPProviderClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProviderClient{
		client:     client,
		classifier: classifier,
		logger:     logger,
	}
}

// Attempt issues the provider's GET request and classifies the response.
// Returned errors are transport-level only.
func (c *HTTPProviderClient) Attempt(ctx context.Context, provider domain.ProviderEndpoint, req domain.MediaRequest, downloadID string) (domain.DownloadOutcome, error) {
	target, err := provider.URL(req, downloadID)
	if err != nil {
		return domain.DownloadOutcome{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.DownloadOutcome{}, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Requesting provider",
		zap.String("provider", provider.Name),
		zap.String("download_id", downloadID))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.DownloadOutcome{}, fmt.Errorf("provider %s request failed: %w", provider.Name, err)
	}

	outcome := c.classifier.Classify(resp)
	outcome.Provider = provider.Name

	c.logger.Debug("Provider responded",
		zap.String("provider", provider.Name),
		zap.Int("status", resp.StatusCode),
		zap.String("outcome", string(outcome.Kind)),
		zap.Int64("total_bytes", outcome.TotalBytes))

	return outcome, nil
}

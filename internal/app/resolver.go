package app

import (
	"context"
	"fmt"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// Resolver walks providers in priority order until one resolves the download
type Resolver struct {
	client domain.ProviderClient
	logger *zap.Logger
}

// NewResolver creates a new resolver
func NewResolver(client domain.ProviderClient, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client: client,
		logger: logger,
	}
}

// Resolve attempts each provider sequentially. Success, MissingOutput and
// AuthRequired end the walk; generic failures and transport errors move on to
// the next provider, and the last failure is returned when none resolve.
// The error return is reserved for configuration problems.
func (r *Resolver) Resolve(ctx context.Context, req domain.MediaRequest, downloadID string, providers []domain.ProviderEndpoint) (domain.DownloadOutcome, error) {
	if len(providers) == 0 {
		return domain.DownloadOutcome{}, domain.ErrConfiguration
	}

	var last domain.DownloadOutcome
	for i, provider := range providers {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Download cancelled before provider attempt",
				zap.String("provider", provider.Name),
				zap.Error(err))
			return domain.GenericFailureOutcome(fmt.Sprintf("download cancelled: %v", err)), nil
		}

		outcome, err := r.client.Attempt(ctx, provider, req, downloadID)
		if err != nil {
			r.logger.Warn("Provider attempt failed",
				zap.String("provider", provider.Name),
				zap.Int("attempt", i+1),
				zap.Int("providers", len(providers)),
				zap.Error(err))
			last = domain.GenericFailureOutcome(err.Error())
			last.Provider = provider.Name
			continue
		}
		if outcome.Provider == "" {
			outcome.Provider = provider.Name
		}

		r.logger.Info("Provider attempt classified",
			zap.String("provider", provider.Name),
			zap.Int("attempt", i+1),
			zap.String("outcome", string(outcome.Kind)),
			zap.String("message", outcome.Message))

		if outcome.IsResolved() {
			return outcome, nil
		}
		if outcome.Stream != nil {
			outcome.Stream.Close()
			outcome.Stream = nil
		}
		last = outcome
	}

	return last, nil
}

package app

import (
	"fmt"
	"os"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"github.com/yourusername/mediafetch-go/internal/infrastructure"
	"go.uber.org/zap"
)

// BuildSession wires the HTTP backend clients, file sink and notifier
// described by config into a new session
func BuildSession(config *domain.Config, logger *zap.Logger) (*DownloadSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoints, err := domain.ProvidersFromConfig(config.Backend.BaseURL, config.Providers)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{config.Download.IncomingDir(), config.Download.CompletedDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	client := infrastructure.NewHTTPClient(config.HTTP)
	classifier := infrastructure.NewResponseClassifier(config.Classifier, logger)

	deps := SessionDeps{
		Metadata:  infrastructure.NewHTTPMetadataClient(client, config.Backend, config.HTTP.MetadataTimeout, logger),
		Providers: infrastructure.NewHTTPProviderClient(client, classifier, logger),
		Endpoints: endpoints,
		Sink:      infrastructure.NewFileSink(config.Download.IncomingDir(), config.Download.CompletedDir(), logger),
		Progress:  config.Progress,
		ChunkSize: config.Download.ChunkSize,
		Logger:    logger,
	}
	if config.Notification.Enabled {
		deps.Notifier = infrastructure.NewNotificationService(&config.Notification, logger)
	}

	return NewDownloadSession(deps)
}

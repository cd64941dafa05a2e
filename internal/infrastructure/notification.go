package infrastructure

import (
	"fmt"
	"os/exec"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// NotificationService handles sending desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyOutcome sends a notification for a terminal download outcome
func (n *NotificationService) NotifyOutcome(meta *domain.MediaMetadata, outcome domain.DownloadOutcome) {
	name := "download"
	if meta != nil && meta.Title != "" {
		name = truncateString(meta.Title, 40)
	}

	var title string
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		title = "Download Completed"
	case domain.OutcomeMissingOutput:
		title = "Output Missing"
	case domain.OutcomeAuthRequired:
		title = "Sign-in Required"
	default:
		title = "Download Failed"
	}

	n.Send(title, fmt.Sprintf("%s: %s", name, outcome.Notice()))
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

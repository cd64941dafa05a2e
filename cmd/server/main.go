package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/mediafetch-go/api"
	"github.com/yourusername/mediafetch-go/api/handlers"
	"github.com/yourusername/mediafetch-go/internal/app"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"github.com/yourusername/mediafetch-go/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var configPath = flag.String("config", "", "Config file path")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Session and error journals, served by the logs API
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize journals: %w", err)
	}
	defer multiLog.Close()

	log.Info("Starting MediaFetch server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("backend", config.Backend.BaseURL),
		zap.Int("providers", len(config.Providers)))

	session, err := app.BuildSession(config, log)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ready atomic.Bool
	router := api.SetupRouter(api.RouterConfig{
		Session: session,
		Logger:  log,
		Journal: multiLog,
		LogsDir: multiLog.GetLogsDir(),
		BaseCtx: ctx,
		Ready:   ready.Load,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", addr))
		ready.Store(true)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		ready.Store(false)
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		journalEvents(ctx, session, multiLog)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}

	log.Info("Server exited")
	return nil
}

// journalEvents copies session events into the session journal until ctx ends
func journalEvents(ctx context.Context, session *app.DownloadSession, multiLog *logger.MultiLogger) {
	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			journalEvent(multiLog, session.ID(), event)
		}
	}
}

func journalEvent(multiLog *logger.MultiLogger, sessionID string, event domain.SessionEvent) {
	fields := []zap.Field{
		zap.String("session_id", sessionID),
		zap.String("event_id", event.ID),
		zap.String("state", string(event.State)),
	}

	switch event.Type {
	case domain.EventProgress:
		// Progress ticks are too frequent to journal
		return
	case domain.EventOutcome:
		fields = append(fields, zap.String("outcome", string(event.Outcome)), zap.String("notice", event.Notice))
		if event.Error != "" {
			fields = append(fields, zap.String("error", event.Error))
		}
		multiLog.LogSessionEvent("download_finished", fields...)
		if event.Outcome != domain.OutcomeSuccess {
			multiLog.LogAppError("download failed", fields...)
		}
	case domain.EventError:
		fields = append(fields, zap.String("error", event.Error))
		multiLog.LogSessionEvent("metadata_failed", fields...)
		multiLog.LogAppError("metadata fetch failed", fields...)
	default:
		multiLog.LogSessionEvent("state_changed", fields...)
	}
}

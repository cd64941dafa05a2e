package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory names a journal file
type LogCategory string

const (
	CategorySession LogCategory = "session" // Session state, progress and outcome events
	CategoryError   LogCategory = "error"   // Application errors
)

// Categories lists every journal category
var Categories = []LogCategory{CategorySession, CategoryError}

const dateLayout = "20060102"

// MultiLogger writes JSON journals, one file per category per day
type MultiLogger struct {
	config      MultiLoggerConfig
	loggers     map[LogCategory]*zap.Logger
	files       map[LogCategory]*os.File
	currentDate string
	now         func() time.Time
	mu          sync.Mutex
}

// MultiLoggerConfig contains configuration for the journals
type MultiLoggerConfig struct {
	Level   string // minimum level of the session journal
	LogsDir string
}

// NewMultiLogger creates the logs directory and opens today's journals
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}
	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		config:  config,
		loggers: make(map[LogCategory]*zap.Logger),
		files:   make(map[LogCategory]*os.File),
		now:     time.Now,
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()
	if err := ml.open(ml.now().Format(dateLayout)); err != nil {
		ml.closeFiles()
		return nil, err
	}
	return ml, nil
}

// open creates the loggers for date. Callers hold mu.
func (ml *MultiLogger) open(date string) error {
	level, err := zapcore.ParseLevel(ml.config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	levels := map[LogCategory]zapcore.Level{
		CategorySession: level,
		CategoryError:   zapcore.ErrorLevel,
	}

	for _, category := range Categories {
		path := LogPath(ml.config.LogsDir, category, date)
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open %s journal: %w", category, err)
		}

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "ts"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.CallerKey = ""

		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), levels[category])
		ml.files[category] = file
		ml.loggers[category] = zap.New(core)
	}

	ml.currentDate = date
	return nil
}

// rotate reopens the journals when the day has changed. Callers hold mu.
func (ml *MultiLogger) rotate() {
	date := ml.now().Format(dateLayout)
	if date == ml.currentDate {
		return
	}

	ml.closeFiles()
	if err := ml.open(date); err != nil {
		fmt.Fprintf(os.Stderr, "journal rotation failed: %v\n", err)
	}
}

func (ml *MultiLogger) closeFiles() {
	for category, logger := range ml.loggers {
		logger.Sync()
		delete(ml.loggers, category)
	}
	for category, file := range ml.files {
		file.Close()
		delete(ml.files, category)
	}
}

// LogPath returns the journal path of category for date (YYYYMMDD)
func LogPath(logsDir string, category LogCategory, date string) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", category, date))
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the journal logger for category, falling back to errors
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.rotate()
	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	if logger, ok := ml.loggers[CategoryError]; ok {
		return logger
	}
	return zap.NewNop()
}

// Session returns the session journal
func (ml *MultiLogger) Session() *zap.Logger {
	return ml.GetLogger(CategorySession)
}

// Error returns the error journal
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogSessionEvent records a session lifecycle event
func (ml *MultiLogger) LogSessionEvent(event string, fields ...zap.Field) {
	ml.Session().Info(event, fields...)
}

// LogAppError records an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// Sync flushes all journals
func (ml *MultiLogger) Sync() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes and closes all journal files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	for _, file := range ml.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
	}
	ml.loggers = make(map[LogCategory]*zap.Logger)
	ml.files = make(map[LogCategory]*os.File)
	return lastErr
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorJournal receives server-side failures. *logger.MultiLogger satisfies it.
type ErrorJournal interface {
	LogAppError(msg string, fields ...zap.Field)
}

// Logger returns a gin middleware for logging. 5xx responses are also
// written to journal when it is non-nil.
func Logger(log *zap.Logger, journal ErrorJournal) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		if statusCode >= 500 {
			log.Warn("HTTP request", fields...)
			if journal != nil {
				journal.LogAppError("HTTP error response", fields...)
			}
			return
		}
		log.Info("HTTP request", fields...)
	}
}

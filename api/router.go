package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediafetch-go/api/handlers"
	"github.com/yourusername/mediafetch-go/api/middleware"
	"github.com/yourusername/mediafetch-go/internal/app"
	"go.uber.org/zap"
)

// RouterConfig holds what the HTTP router serves
type RouterConfig struct {
	Session *app.DownloadSession
	Logger  *zap.Logger
	Journal middleware.ErrorJournal // optional
	LogsDir string                  // journal endpoints are skipped when empty
	BaseCtx context.Context         // lifetime of background downloads
	Ready   func() bool
}

// SetupRouter sets up the HTTP router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Logger(log, cfg.Journal))
	router.Use(middleware.Recovery(log, cfg.Journal))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(cfg.Session, cfg.Ready)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(cfg.Session, cfg.BaseCtx, log)
		eventsHandler := handlers.NewSessionEventsHandler(cfg.Session, log)
		session := v1.Group("/session")
		{
			session.GET("", sessionHandler.GetSession)
			session.POST("/submit", sessionHandler.Submit)
			session.POST("/download", sessionHandler.Download)
			session.GET("/events", eventsHandler.HandleWebSocket)
		}

		if cfg.LogsDir != "" {
			logHandler := handlers.NewLogHandler(cfg.LogsDir)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	return router
}

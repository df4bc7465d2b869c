package http

import (
	"github.com/gin-gonic/gin"

	"github.com/exifnotes/logbook/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in cfg disable their routes.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	logger := logging.OrNop(cfg.Logger).Named("http")

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(SecurityHeaders())

	if cfg.Registry != nil {
		metrics, err := NewHTTPMetrics(cfg.Registry)
		if err != nil {
			return nil, err
		}
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler(logger))
	}

	// Health endpoints
	health := NewHealthController(cfg.Version)
	health.AddCheck("database", DatabaseCheck(cfg.Database))
	if cfg.BackupSchedule != nil {
		health.AddCheck("backup_schedule", BackupScheduleCheck(cfg.BackupSchedule))
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Gear != nil {
		NewGearController(cfg.Gear, logger).RegisterRoutes(router)
	}
	if cfg.FilmStocks != nil {
		NewFilmStockController(cfg.FilmStocks, logger).RegisterRoutes(router)
	}
	if cfg.Rolls != nil && cfg.Frames != nil {
		NewRollController(cfg.Rolls, cfg.Frames, cfg.ExifTool, logger).RegisterRoutes(router)
	}
	if cfg.Frames != nil {
		NewFrameController(cfg.Frames, logger).RegisterRoutes(router)
	}
	if cfg.Pictures != nil {
		NewPictureController(cfg.Pictures, logger).RegisterRoutes(router)
	}
	if cfg.Tasks != nil {
		NewTasksController(cfg.Tasks, cfg.BackupSchedule, logger).RegisterRoutes(router)
	}

	return router, nil
}

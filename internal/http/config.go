package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/exporters"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Gear       GearStore
	FilmStocks FilmStockStore
	Rolls      RollStore
	Frames     interface {
		FrameStore
		RollFrames
	}
	Pictures PictureStore

	// ExifTool command options for roll exports
	ExifTool exporters.ExifToolOptions

	// Task queue (optional)
	Tasks          TaskQueue
	BackupSchedule BackupSchedule

	// Prometheus registry; nil disables /metrics
	Registry *prometheus.Registry

	Logger *zap.Logger

	// Application info
	Version string
}

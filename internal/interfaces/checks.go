package interfaces

import (
	"github.com/exifnotes/logbook/internal/backup"
	"github.com/exifnotes/logbook/internal/exporters"
	"github.com/exifnotes/logbook/internal/geocoding"
	"github.com/exifnotes/logbook/internal/http"
	"github.com/exifnotes/logbook/internal/pictures"
	"github.com/exifnotes/logbook/internal/services"
	"github.com/exifnotes/logbook/internal/tasks"
)

// =============================================================================
// HTTP API
// =============================================================================

var _ http.GearStore = (*services.GearService)(nil)
var _ http.FilmStockStore = (*services.FilmStockService)(nil)
var _ http.RollStore = (*services.RollService)(nil)
var _ http.FrameStore = (*services.FrameService)(nil)
var _ http.RollFrames = (*services.FrameService)(nil)
var _ http.PictureStore = (*services.PictureService)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.BackupSchedule = (*backup.Scheduler)(nil)

// =============================================================================
// Pictures
// =============================================================================

var _ pictures.Store = (*pictures.DiskStore)(nil)
var _ pictures.Store = (*pictures.S3Store)(nil)
var _ services.PictureRemover = (pictures.Store)(nil)

// =============================================================================
// External services
// =============================================================================

var _ services.Geocoder = (*geocoding.Nominatim)(nil)

// =============================================================================
// Exports and backups
// =============================================================================

var _ exporters.RollExporter = (*exporters.ExifToolExporter)(nil)
var _ exporters.RollExporter = (*exporters.CSVExporter)(nil)
var _ exporters.RollExporter = (*exporters.JSONExporter)(nil)

var _ backup.Target = (*backup.LocalTarget)(nil)
var _ backup.Target = (*backup.SFTPTarget)(nil)
var _ backup.Target = (*backup.FTPTarget)(nil)
var _ backup.Runner = (*backup.Service)(nil)

// =============================================================================
// Background tasks
// =============================================================================

var _ tasks.PictureCleaner = (*services.PictureService)(nil)

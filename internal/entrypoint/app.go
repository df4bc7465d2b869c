package entrypoint

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/backup"
	"github.com/exifnotes/logbook/internal/config"
	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/exporters"
	"github.com/exifnotes/logbook/internal/geocoding"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/pictures"
	"github.com/exifnotes/logbook/internal/services"
)

const geocodingTimeout = 10 * time.Second

// App holds the opened database and every service built on it. It is shared
// by the HTTP server and the CLI commands.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.Database

	PictureStore pictures.Store

	Gear       *services.GearService
	FilmStocks *services.FilmStockService
	Rolls      *services.RollService
	Frames     *services.FrameService
	Pictures   *services.PictureService
}

// NewApp opens the database and wires the services. The caller must Close
// the app.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	store, err := NewPictureStore(cfg.Pictures)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var geocoder services.Geocoder
	if cfg.Geocoding.Enabled {
		geocoder = geocoding.NewNominatim(geocoding.Config{
			BaseURL:   cfg.Geocoding.BaseURL,
			UserAgent: cfg.Geocoding.UserAgent,
			Language:  cfg.Geocoding.Language,
			Throttle:  cfg.Geocoding.Throttle,
			CacheTTL:  cfg.Geocoding.CacheTTL,
		}, &http.Client{Timeout: geocodingTimeout}, logger)
	}

	frames := services.NewFrameService(db.DB, geocoder, store, logger)
	app := &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		PictureStore: store,
		Gear:         services.NewGearService(db.DB, logger),
		FilmStocks:   services.NewFilmStockService(db.DB, logger),
		Rolls:        services.NewRollService(db.DB, store, logger),
		Frames:       frames,
		Pictures: services.NewPictureService(db.DB, store, frames, services.PictureConfig{
			MaxSize: cfg.Pictures.MaxSize,
			Quality: cfg.Pictures.Quality,
		}, logger),
	}
	return app, nil
}

// Load fills the in-memory lists of the gear, film stock and roll services.
func (a *App) Load() error {
	return errors.Join(a.Gear.Load(), a.FilmStocks.Load(), a.Rolls.Load())
}

func (a *App) Close() error {
	return a.DB.Close()
}

// ExifToolOptions returns the configured ExifTool export options.
func (a *App) ExifToolOptions() exporters.ExifToolOptions {
	return exporters.ExifToolOptions{
		ExifToolPath:   a.Config.ExifTool.Path,
		PicturesPath:   a.Config.ExifTool.PicturesPath,
		FileEnding:     a.Config.ExifTool.FileEnding,
		IgnoreWarnings: a.Config.ExifTool.IgnoreWarnings,
		Artist:         a.Config.ExifTool.Artist,
		Copyright:      a.Config.ExifTool.Copyright,
	}
}

// BackupService builds the backup service for the configured target.
func (a *App) BackupService() (*backup.Service, error) {
	target, err := backup.NewTarget(backupTargetConfig(a.Config.Backup))
	if err != nil {
		return nil, err
	}
	return backup.NewService(a.DB.DB, target, a.Logger), nil
}

func backupTargetConfig(cfg config.Backup) backup.TargetConfig {
	return backup.TargetConfig{
		Type:           cfg.TargetType,
		Dir:            cfg.Dir,
		Host:           cfg.Host,
		Port:           cfg.Port,
		Username:       cfg.Username,
		Password:       cfg.Password,
		KeyFile:        cfg.KeyFile,
		KnownHostsFile: cfg.KnownHostsFile,
		Timeout:        cfg.Timeout,
	}
}

// NewPictureStore creates the configured picture backend.
func NewPictureStore(cfg config.Pictures) (pictures.Store, error) {
	switch cfg.Backend {
	case config.PictureBackendS3:
		store, err := pictures.NewS3Store(pictures.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.PictureBackendDisk, "":
		store, err := pictures.NewDiskStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown pictures backend %q", cfg.Backend)
	}
}

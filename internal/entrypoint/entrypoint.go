package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/backup"
	"github.com/exifnotes/logbook/internal/config"
	http_controllers "github.com/exifnotes/logbook/internal/http"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM and then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	logger = logging.OrNop(logger)
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// Run wires every component from cfg and serves the API until interrupted.
func Run(cfg *config.Config, version string, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	logger.Info("starting logbook", zap.String("version", version))

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}()
	if err := app.Load(); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	backupService, err := app.BackupService()
	if err != nil {
		if cfg.Backup.Enabled {
			return fmt.Errorf("failed to initialize backup target: %w", err)
		}
		logger.Warn("backup target unavailable, backups disabled", zap.Error(err))
	}

	routerCfg := http_controllers.RouterConfig{
		Database:   app.DB,
		Gear:       app.Gear,
		FilmStocks: app.FilmStocks,
		Rolls:      app.Rolls,
		Frames:     app.Frames,
		Pictures:   app.Pictures,
		ExifTool:   app.ExifToolOptions(),
		Logger:     logger,
		Version:    version,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}()
		taskClient.Register(tasks.NewCleanupUnusedPicturesQueue(app.Pictures, logger))
		if backupService != nil {
			taskClient.Register(tasks.NewBackupDatabaseQueue(backupService, logger))
		}
		go taskClient.Start(ctx)
		routerCfg.Tasks = taskClient
	}

	var scheduler *backup.Scheduler
	if cfg.Backup.Enabled {
		scheduler = backup.NewScheduler(backupService, cfg.Backup.Schedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backup scheduler: %w", err)
		}
		routerCfg.BackupSchedule = scheduler
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		routerCfg.Registry = registry
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		return err
	}

	onShutdown := func(ctx context.Context) {
		if scheduler != nil {
			scheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancel()
	}

	return Serve(router, cfg, logger, onShutdown)
}

package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/backup"
	"github.com/exifnotes/logbook/internal/logging"
)

// BackupDatabaseTask copies the database to the configured backup target.
type BackupDatabaseTask struct {
	Reason string `json:"reason,omitempty"`
}

func (t BackupDatabaseTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backup_database",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackupDatabaseProcessor creates a processor function for BackupDatabaseTask.
func BackupDatabaseProcessor(runner backup.Runner, logger *zap.Logger) backlite.QueueProcessor[BackupDatabaseTask] {
	logger = logging.OrNop(logger)
	return func(ctx context.Context, task BackupDatabaseTask) error {
		if runner == nil {
			return fmt.Errorf("backup not configured")
		}

		result, err := runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("backup database: %w", err)
		}

		logger.Info("Database backed up",
			zap.String("reason", task.Reason),
			zap.String("name", result.Name),
			zap.String("target", result.Target))
		return nil
	}
}

// NewBackupDatabaseQueue creates a backlite queue for database backups.
func NewBackupDatabaseQueue(runner backup.Runner, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(BackupDatabaseProcessor(runner, logger))
}

package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/logging"
)

// PictureCleaner deletes complementary pictures no frame refers to.
type PictureCleaner interface {
	CleanupUnusedPictures(ctx context.Context) ([]string, error)
}

// CleanupUnusedPicturesTask removes stored pictures that are not attached to
// any frame.
type CleanupUnusedPicturesTask struct{}

// Config returns the queue configuration for picture cleanup tasks.
func (t CleanupUnusedPicturesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_unused_pictures",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupUnusedPicturesProcessor creates a processor function for CleanupUnusedPicturesTask.
func CleanupUnusedPicturesProcessor(cleaner PictureCleaner, logger *zap.Logger) backlite.QueueProcessor[CleanupUnusedPicturesTask] {
	logger = logging.OrNop(logger)
	return func(ctx context.Context, task CleanupUnusedPicturesTask) error {
		if cleaner == nil {
			return fmt.Errorf("picture cleaner not configured")
		}

		deleted, err := cleaner.CleanupUnusedPictures(ctx)
		if err != nil {
			return fmt.Errorf("cleanup unused pictures: %w", err)
		}

		logger.Info("Cleaned up unused pictures", zap.Int("deleted", len(deleted)))
		return nil
	}
}

// NewCleanupUnusedPicturesQueue creates a backlite queue for picture cleanup tasks.
func NewCleanupUnusedPicturesQueue(cleaner PictureCleaner, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupUnusedPicturesProcessor(cleaner, logger))
}

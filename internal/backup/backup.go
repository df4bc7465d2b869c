// Package backup copies the logbook database to and from backup files and
// remote targets.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/logging"
)

var ErrInvalidBackup = errors.New("not a valid logbook database")

// Filename returns the name a backup taken at t is stored under.
func Filename(t time.Time) string {
	return "exif_notes_database_" + t.Format("2006-01-02_150405") + ".db"
}

// Export writes a consistent copy of the open database to destPath. An
// existing file at destPath is replaced.
func Export(ctx context.Context, db *gorm.DB, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if err := os.Remove(destPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if err := db.WithContext(ctx).Exec("VACUUM INTO ?", destPath).Error; err != nil {
		return fmt.Errorf("vacuum into %s: %w", destPath, err)
	}
	return nil
}

// ValidateFile opens the database file at path and checks that it has every
// logbook table.
func ValidateFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	db, err := database.Open(path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	if err := database.Validate(db); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return nil
}

// Import validates the candidate database at srcPath and replaces the file
// at livePath with it. The live database must be closed by the caller.
func Import(srcPath, livePath string, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	if err := ValidateFile(srcPath); err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(livePath), ".import-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Journal files of the old database would be replayed onto the new one.
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if err := os.Remove(livePath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			os.Remove(tmpPath)
			return fmt.Errorf("remove %s: %w", suffix, err)
		}
	}
	if err := os.Rename(tmpPath, livePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace database: %w", err)
	}

	logger.Info("database imported", zap.String("source", srcPath), zap.String("path", livePath))
	return nil
}

package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/logging"
)

// Service takes database backups and hands them to a target.
type Service struct {
	db     *gorm.DB
	target Target
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, target Target, logger *zap.Logger) *Service {
	return &Service{db: db, target: target, logger: logging.OrNop(logger), now: time.Now}
}

// Result describes a finished backup.
type Result struct {
	Name     string        `json:"name"`
	Target   string        `json:"target"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
}

// Run exports the database to a temporary file and stores it on the target.
func (s *Service) Run(ctx context.Context) (Result, error) {
	start := s.now()
	name := Filename(start)

	tmpDir, err := os.MkdirTemp("", "logbook-backup-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, name)
	if err := Export(ctx, s.db, local); err != nil {
		return Result{}, err
	}

	f, err := os.Open(local)
	if err != nil {
		return Result{}, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat backup: %w", err)
	}

	if err := s.target.Store(ctx, name, f); err != nil {
		s.logger.Error("backup failed", zap.String("target", s.target.Name()), zap.Error(err))
		return Result{}, err
	}

	result := Result{
		Name:     name,
		Target:   s.target.Name(),
		Size:     info.Size(),
		Duration: time.Since(start),
	}
	s.logger.Info("backup stored",
		zap.String("name", result.Name),
		zap.String("target", result.Target),
		zap.Int64("size", result.Size),
		zap.Duration("duration", result.Duration))
	return result, nil
}

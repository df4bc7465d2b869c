package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/frames"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/pictures"
)

// PictureConfig controls how uploaded pictures are compressed.
type PictureConfig struct {
	MaxSize uint
	Quality int
}

// PictureService stores the complementary pictures of frames.
type PictureService struct {
	db     *gorm.DB
	store  pictures.Store
	frames *FrameService
	cfg    PictureConfig
	logger *zap.Logger
}

func NewPictureService(db *gorm.DB, store pictures.Store, frameService *FrameService, cfg PictureConfig, logger *zap.Logger) *PictureService {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = pictures.DefaultMaxSize
	}
	if cfg.Quality <= 0 {
		cfg.Quality = pictures.DefaultQuality
	}
	return &PictureService{
		db:     db,
		store:  store,
		frames: frameService,
		cfg:    cfg,
		logger: logging.OrNop(logger).Named("pictures"),
	}
}

// Upload compresses the picture, stores it under a new name and attaches it
// to the frame. The frame's previous picture is deleted.
func (s *PictureService) Upload(ctx context.Context, frameID int64, r io.Reader) (string, error) {
	if _, err := s.frames.GetFrame(frameID); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := pictures.Compress(r, &buf, s.cfg.MaxSize, s.cfg.Quality); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.attach(ctx, frameID, &buf)
}

// Rotate turns the frame's picture clockwise by degrees.
func (s *PictureService) Rotate(ctx context.Context, frameID int64, degrees int) (string, error) {
	frame, err := s.frames.GetFrame(frameID)
	if err != nil {
		return "", err
	}
	if frame.PictureFilename == "" {
		return "", fmt.Errorf("frame %d has no picture: %w", frameID, ErrNotFound)
	}
	rc, err := s.Open(ctx, frame.PictureFilename)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if err := pictures.Rotate(rc, &buf, degrees); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.attach(ctx, frameID, &buf)
}

func (s *PictureService) attach(ctx context.Context, frameID int64, r io.Reader) (string, error) {
	name := pictures.NewPictureName()
	if err := s.store.Save(ctx, name, r); err != nil {
		return "", err
	}
	if err := s.frames.SetPicture(ctx, frameID, name); err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.logger.Warn("Failed to remove orphaned picture", zap.String("file", name), zap.Error(delErr))
		}
		return "", err
	}
	s.logger.Info("Picture attached", zap.Int64("frame_id", frameID), zap.String("file", name))
	return name, nil
}

// Remove detaches and deletes the frame's picture.
func (s *PictureService) Remove(ctx context.Context, frameID int64) error {
	return s.frames.SetPicture(ctx, frameID, "")
}

// Open returns the stored picture.
func (s *PictureService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, name)
	if errors.Is(err, pictures.ErrPictureNotFound) || errors.Is(err, pictures.ErrInvalidName) {
		return nil, fmt.Errorf("picture %s: %w", name, ErrNotFound)
	}
	return rc, err
}

// ExportZip writes every picture referenced by a frame into a zip archive
// and returns the referenced names missing from the store.
func (s *PictureService) ExportZip(ctx context.Context, w io.Writer) ([]string, error) {
	names, err := frames.NewRepository(s.db).GetAllPictureFilenames()
	if err != nil {
		return nil, err
	}
	missing, err := pictures.ExportZip(ctx, s.store, names, w)
	if len(missing) > 0 {
		s.logger.Warn("Pictures missing from export", zap.Strings("files", missing))
	}
	return missing, err
}

// CleanupUnusedPictures deletes stored pictures no frame refers to.
func (s *PictureService) CleanupUnusedPictures(ctx context.Context) ([]string, error) {
	names, err := frames.NewRepository(s.db).GetAllPictureFilenames()
	if err != nil {
		return nil, err
	}
	deleted, err := pictures.CleanupUnused(ctx, s.store, names)
	if err != nil {
		return deleted, fmt.Errorf("cleanup pictures: %w", err)
	}
	s.logger.Info("Unused pictures deleted", zap.Int("count", len(deleted)))
	return deleted, nil
}

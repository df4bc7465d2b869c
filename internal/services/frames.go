package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/filters"
	"github.com/exifnotes/logbook/internal/database/frames"
	"github.com/exifnotes/logbook/internal/database/rolls"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/sorting"
)

// FrameSnapshot is the frame list of one roll in display order.
type FrameSnapshot struct {
	State    LoadState             `json:"state"`
	RollID   int64                 `json:"roll_id"`
	Frames   []entities.Frame      `json:"frames"`
	SortMode sorting.FrameSortMode `json:"sort_mode"`
	Reversed bool                  `json:"reversed"`
}

// FrameService manages the frames of rolls. Sorted frame lists are cached
// per roll and refreshed after each mutation.
type FrameService struct {
	db       *gorm.DB
	geocoder Geocoder
	pictures PictureRemover
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	cache    map[int64][]entities.Frame
	sortMode sorting.FrameSortMode
	reversed bool
}

// NewFrameService creates a frame service. geocoder and pictures are
// optional.
func NewFrameService(db *gorm.DB, geocoder Geocoder, pictures PictureRemover, logger *zap.Logger) *FrameService {
	return &FrameService{
		db:       db,
		geocoder: geocoder,
		pictures: pictures,
		logger:   logging.OrNop(logger).Named("frames"),
		now:      time.Now,
		cache:    make(map[int64][]entities.Frame),
		sortMode: sorting.FrameSortCount,
	}
}

func (s *FrameService) load(rollID int64) ([]entities.Frame, error) {
	list, err := frames.NewRepository(s.db).GetFrames(rollID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrange(list)
	s.cache[rollID] = list
	return list, nil
}

// arrange sorts list by the current mode. Callers hold mu.
func (s *FrameService) arrange(list []entities.Frame) {
	sorting.SortFrames(list, s.sortMode)
	if s.reversed {
		sorting.ReverseFrames(list)
	}
}

// Frames returns the frames of a roll, loading them on first use.
func (s *FrameService) Frames(rollID int64) (FrameSnapshot, error) {
	s.mu.RLock()
	list, ok := s.cache[rollID]
	s.mu.RUnlock()
	if !ok {
		var err error
		if list, err = s.load(rollID); err != nil {
			return FrameSnapshot{State: InProgress, RollID: rollID}, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FrameSnapshot{
		State:    Success,
		RollID:   rollID,
		Frames:   slices.Clone(list),
		SortMode: s.sortMode,
		Reversed: s.reversed,
	}, nil
}

// SetSortMode re-sorts every cached roll.
func (s *FrameService) SetSortMode(mode sorting.FrameSortMode, reversed bool) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidInput, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortMode, s.reversed = mode, reversed
	for _, list := range s.cache {
		s.arrange(list)
	}
	return nil
}

func (s *FrameService) GetFrame(id int64) (*entities.Frame, error) {
	frame, err := frames.NewRepository(s.db).GetFrame(id)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, fmt.Errorf("frame %d: %w", id, ErrNotFound)
	}
	return frame, nil
}

// SaveFrame inserts or overwrites the frame. When the frame has a location
// but no address, the address is looked up first.
func (s *FrameService) SaveFrame(ctx context.Context, frame *entities.Frame) error {
	roll, err := rolls.NewRepository(s.db).GetRoll(frame.RollID)
	if err != nil {
		return err
	}
	if roll == nil {
		return fmt.Errorf("roll %d: %w", frame.RollID, ErrNotFound)
	}
	if frame.Count < 0 {
		return fmt.Errorf("%w: frame count must not be negative", ErrInvalidInput)
	}
	if frame.Latitude != nil && (*frame.Latitude < -90 || *frame.Latitude > 90) ||
		frame.Longitude != nil && (*frame.Longitude < -180 || *frame.Longitude > 180) {
		return fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}
	filterIDs := make([]int64, 0, len(frame.Filters))
	for _, filter := range frame.Filters {
		filterIDs = append(filterIDs, filter.ID)
	}
	if err := requireIDs("filter", filterIDs, filters.NewRepository(s.db).GetFilter); err != nil {
		return err
	}
	if frame.LensID == nil && frame.Lens != nil {
		id := frame.Lens.ID
		frame.LensID = &id
	}

	if frame.HasLocation() && frame.FormattedAddress == "" && s.geocoder != nil {
		address, err := s.geocoder.ReverseGeocode(ctx, *frame.Latitude, *frame.Longitude)
		if err != nil {
			s.logger.Warn("Reverse geocoding failed", zap.Int64("roll_id", frame.RollID), zap.Error(err))
		}
		frame.FormattedAddress = address
	}

	if err := frames.NewRepository(s.db).UpsertFrame(frame); err != nil {
		return err
	}
	s.refresh(frame.RollID)
	return nil
}

// DeleteFrame removes the frame and its complementary picture.
func (s *FrameService) DeleteFrame(ctx context.Context, id int64) error {
	frame, err := s.GetFrame(id)
	if err != nil {
		return err
	}
	if _, err := frames.NewRepository(s.db).DeleteFrame(frame); err != nil {
		return err
	}
	if frame.PictureFilename != "" && s.pictures != nil {
		if err := s.pictures.Delete(ctx, frame.PictureFilename); err != nil {
			s.logger.Warn("Failed to delete complementary picture",
				zap.Int64("frame_id", id), zap.String("file", frame.PictureFilename), zap.Error(err))
		}
	}
	s.refresh(frame.RollID)
	return nil
}

// SetPicture records the complementary picture of a frame, deleting the one
// it replaces.
func (s *FrameService) SetPicture(ctx context.Context, id int64, name string) error {
	frame, err := s.GetFrame(id)
	if err != nil {
		return err
	}
	previous := frame.PictureFilename
	frame.PictureFilename = name
	if _, err := frames.NewRepository(s.db).UpdateFrame(frame); err != nil {
		return err
	}
	if previous != "" && previous != name && s.pictures != nil {
		if err := s.pictures.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced picture", zap.String("file", previous), zap.Error(err))
		}
	}
	s.refresh(frame.RollID)
	return nil
}

// NextFrameDefaults returns a new, unsaved frame for the roll. It continues
// the count of the highest-numbered frame and carries over its lens,
// exposure settings and filters.
func (s *FrameService) NextFrameDefaults(rollID int64) (*entities.Frame, error) {
	roll, err := rolls.NewRepository(s.db).GetRoll(rollID)
	if err != nil {
		return nil, err
	}
	if roll == nil {
		return nil, fmt.Errorf("roll %d: %w", rollID, ErrNotFound)
	}
	list, err := frames.NewRepository(s.db).GetFrames(rollID)
	if err != nil {
		return nil, err
	}

	next := &entities.Frame{
		RollID:        rollID,
		Count:         1,
		Date:          s.now(),
		NoOfExposures: 1,
		Filters:       []entities.Filter{},
	}
	if roll.Camera != nil && roll.Camera.Lens != nil {
		id := roll.Camera.Lens.ID
		next.Lens = roll.Camera.Lens
		next.LensID = &id
	}
	if len(list) == 0 {
		return next, nil
	}

	sorting.SortFrames(list, sorting.FrameSortCount)
	last := list[len(list)-1]
	next.Count = last.Count + 1
	next.Shutter = last.Shutter
	next.Aperture = last.Aperture
	next.FocalLength = last.FocalLength
	next.Filters = slices.Clone(last.Filters)
	if last.LensID != nil {
		id := *last.LensID
		next.LensID = &id
		next.Lens = last.Lens
	}
	return next, nil
}

// Forget drops the cached frames of a roll, e.g. after the roll is deleted.
func (s *FrameService) Forget(rollID int64) {
	s.mu.Lock()
	delete(s.cache, rollID)
	s.mu.Unlock()
}

func (s *FrameService) refresh(rollID int64) {
	if _, err := s.load(rollID); err != nil {
		s.logger.Warn("Failed to reload frames", zap.Int64("roll_id", rollID), zap.Error(err))
	}
}

package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/frames"
	"github.com/exifnotes/logbook/internal/database/labels"
	"github.com/exifnotes/logbook/internal/database/rolls"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/sorting"
)

// RollSnapshot is the roll list as currently filtered and sorted.
type RollSnapshot struct {
	State    LoadState            `json:"state"`
	Rolls    []entities.Roll      `json:"rolls"`
	Filter   rolls.RollFilter     `json:"filter"`
	SortMode sorting.RollSortMode `json:"sort_mode"`
	Labels   []entities.Label     `json:"labels"`
}

// RollService manages rolls and labels.
type RollService struct {
	db       *gorm.DB
	pictures PictureRemover
	logger   *zap.Logger

	mu       sync.RWMutex
	state    LoadState
	rolls    []entities.Roll
	labels   []entities.Label
	filter   rolls.RollFilter
	sortMode sorting.RollSortMode
}

// NewRollService creates a roll service. pictures may be nil, in which case
// complementary pictures of deleted rolls are left in place.
func NewRollService(db *gorm.DB, pictures PictureRemover, logger *zap.Logger) *RollService {
	return &RollService{
		db:       db,
		pictures: pictures,
		logger:   logging.OrNop(logger).Named("rolls"),
		filter:   rolls.RollFilter{Mode: rolls.FilterActive},
		sortMode: sorting.RollSortDate,
	}
}

func (s *RollService) Load() error {
	s.mu.Lock()
	s.state = InProgress
	filter := s.filter
	s.mu.Unlock()

	rollList, err := rolls.NewRepository(s.db).GetRolls(filter)
	if err != nil {
		return err
	}
	labelList, err := labels.NewRepository(s.db).GetLabels()
	if err != nil {
		return err
	}

	s.mu.Lock()
	sorting.SortRolls(rollList, s.sortMode)
	s.rolls, s.labels = rollList, labelList
	s.state = Success
	s.mu.Unlock()
	return nil
}

func (s *RollService) Snapshot() RollSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RollSnapshot{
		State:    s.state,
		Rolls:    slices.Clone(s.rolls),
		Filter:   s.filter,
		SortMode: s.sortMode,
		Labels:   slices.Clone(s.labels),
	}
}

// SetFilter changes which rolls are listed and reloads.
func (s *RollService) SetFilter(filter rolls.RollFilter) error {
	if filter.Mode == "" {
		filter.Mode = rolls.FilterActive
	}
	if !filter.Mode.Valid() {
		return fmt.Errorf("%w: unknown roll filter %q", ErrInvalidInput, filter.Mode)
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return s.Load()
}

func (s *RollService) SetSortMode(mode sorting.RollSortMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidInput, mode)
	}
	s.mu.Lock()
	s.sortMode = mode
	sorting.SortRolls(s.rolls, mode)
	s.mu.Unlock()
	return nil
}

func (s *RollService) GetRoll(id int64) (*entities.Roll, error) {
	roll, err := rolls.NewRepository(s.db).GetRoll(id)
	if err != nil {
		return nil, err
	}
	if roll == nil {
		return nil, fmt.Errorf("roll %d: %w", id, ErrNotFound)
	}
	return roll, nil
}

// SaveRoll inserts or overwrites the roll together with its labels.
func (s *RollService) SaveRoll(roll *entities.Roll) error {
	if strings.TrimSpace(roll.Name) == "" {
		return fmt.Errorf("%w: roll name is required", ErrInvalidInput)
	}
	if roll.Format != "" && !roll.Format.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidInput, roll.Format)
	}
	labelIDs := make([]int64, 0, len(roll.Labels))
	for _, label := range roll.Labels {
		labelIDs = append(labelIDs, label.ID)
	}
	if err := requireIDs("label", labelIDs, labels.NewRepository(s.db).GetLabel); err != nil {
		return err
	}
	if err := rolls.NewRepository(s.db).UpsertRoll(roll); err != nil {
		return err
	}
	s.logger.Info("Saved roll", zap.Int64("roll_id", roll.ID), zap.String("name", roll.Name))
	s.reload()
	return nil
}

// DeleteRoll removes the roll with its frames, then their pictures.
func (s *RollService) DeleteRoll(ctx context.Context, id int64) error {
	frameList, err := frames.NewRepository(s.db).GetFrames(id)
	if err != nil {
		return err
	}
	affected, err := rolls.NewRepository(s.db).DeleteRoll(&entities.Roll{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("roll %d: %w", id, ErrNotFound)
	}
	for _, frame := range frameList {
		s.removePicture(ctx, frame.PictureFilename)
	}
	s.reload()
	return nil
}

func (s *RollService) SetArchived(id int64, archived bool) error {
	return s.updateRoll(id, func(roll *entities.Roll) { roll.Archived = archived })
}

func (s *RollService) SetFavorite(id int64, favorite bool) error {
	return s.updateRoll(id, func(roll *entities.Roll) { roll.Favorite = favorite })
}

// SetRollLabels makes labelIDs the exact label set of the roll.
func (s *RollService) SetRollLabels(id int64, labelIDs []int64) error {
	labelRepo := labels.NewRepository(s.db)
	selected := make([]entities.Label, 0, len(labelIDs))
	for _, labelID := range labelIDs {
		label, err := labelRepo.GetLabel(labelID)
		if err != nil {
			return err
		}
		if label == nil {
			return fmt.Errorf("label %d: %w", labelID, ErrNotFound)
		}
		selected = append(selected, *label)
	}
	return s.updateRoll(id, func(roll *entities.Roll) { roll.Labels = selected })
}

func (s *RollService) updateRoll(id int64, mutate func(*entities.Roll)) error {
	roll, err := s.GetRoll(id)
	if err != nil {
		return err
	}
	mutate(roll)
	affected, err := rolls.NewRepository(s.db).UpdateRoll(roll)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("roll %d: %w", id, ErrNotFound)
	}
	s.reload()
	return nil
}

// --- Labels ---

func (s *RollService) SaveLabel(label *entities.Label) error {
	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		return fmt.Errorf("%w: label name is required", ErrInvalidInput)
	}
	repo := labels.NewRepository(s.db)
	existing, err := repo.FindByName(label.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != label.ID {
		return fmt.Errorf("%w: label %q already exists", ErrInvalidInput, label.Name)
	}
	if err := repo.UpsertLabel(label); err != nil {
		return err
	}
	s.reload()
	return nil
}

// DeleteLabel removes the label from every roll and deletes it.
func (s *RollService) DeleteLabel(id int64) error {
	affected, err := labels.NewRepository(s.db).DeleteLabel(&entities.Label{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("label %d: %w", id, ErrNotFound)
	}
	s.mu.Lock()
	if s.filter.LabelID != nil && *s.filter.LabelID == id {
		s.filter.LabelID = nil
	}
	s.mu.Unlock()
	s.reload()
	return nil
}

func (s *RollService) removePicture(ctx context.Context, name string) {
	if name == "" || s.pictures == nil {
		return
	}
	if err := s.pictures.Delete(ctx, name); err != nil {
		s.logger.Warn("Failed to delete complementary picture", zap.String("file", name), zap.Error(err))
	}
}

func (s *RollService) reload() {
	if err := s.Load(); err != nil {
		s.logger.Warn("Failed to reload rolls", zap.Error(err))
	}
}

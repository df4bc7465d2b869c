package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/cameras"
	"github.com/exifnotes/logbook/internal/database/filters"
	"github.com/exifnotes/logbook/internal/database/lenses"
	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
)

// GearSnapshot is a copy of the gear lists held by GearService.
type GearSnapshot struct {
	State   LoadState         `json:"state"`
	Cameras []entities.Camera `json:"cameras"`
	Lenses  []entities.Lens   `json:"lenses"`
	Filters []entities.Filter `json:"filters"`
}

// GearService manages cameras, lenses and filters and the compatibility
// links between them.
type GearService struct {
	db     *gorm.DB
	logger *zap.Logger

	mu      sync.RWMutex
	state   LoadState
	cameras []entities.Camera
	lenses  []entities.Lens
	filters []entities.Filter
}

func NewGearService(db *gorm.DB, logger *zap.Logger) *GearService {
	return &GearService{db: db, logger: logging.OrNop(logger).Named("gear")}
}

// Load refreshes the in-memory gear lists from the database.
func (s *GearService) Load() error {
	s.mu.Lock()
	s.state = InProgress
	s.mu.Unlock()

	cameraList, err := cameras.NewRepository(s.db).GetCameras()
	if err != nil {
		return err
	}
	lensList, err := lenses.NewRepository(s.db).GetLenses()
	if err != nil {
		return err
	}
	filterList, err := filters.NewRepository(s.db).GetFilters()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cameras, s.lenses, s.filters = cameraList, lensList, filterList
	s.state = Success
	s.mu.Unlock()
	return nil
}

func (s *GearService) Snapshot() GearSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GearSnapshot{
		State:   s.state,
		Cameras: slices.Clone(s.cameras),
		Lenses:  slices.Clone(s.lenses),
		Filters: slices.Clone(s.filters),
	}
}

func (s *GearService) reload() {
	if err := s.Load(); err != nil {
		s.logger.Warn("Failed to reload gear", zap.Error(err))
	}
}

// --- Cameras ---

func (s *GearService) GetCamera(id int64) (*entities.Camera, error) {
	camera, err := cameras.NewRepository(s.db).GetCamera(id)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("camera %d: %w", id, ErrNotFound)
	}
	return camera, nil
}

// SaveCamera adds the camera when it has no ID and updates it otherwise.
func (s *GearService) SaveCamera(camera *entities.Camera) error {
	if err := validateCamera(camera); err != nil {
		return err
	}
	repo := cameras.NewRepository(s.db)
	if camera.ID == 0 {
		if _, err := repo.AddCamera(camera); err != nil {
			return err
		}
	} else {
		affected, err := repo.UpdateCamera(camera)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("camera %d: %w", camera.ID, ErrNotFound)
		}
	}
	s.logger.Info("Saved camera", zap.Int64("camera_id", camera.ID), zap.String("name", camera.Name()))
	s.reload()
	return nil
}

func (s *GearService) DeleteCamera(id int64) error {
	repo := cameras.NewRepository(s.db)
	inUse, err := repo.IsCameraInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("camera %d: %w", id, ErrGearInUse)
	}
	affected, err := repo.DeleteCamera(&entities.Camera{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("camera %d: %w", id, ErrNotFound)
	}
	s.reload()
	return nil
}

// SetCameraLenses makes lensIDs the exact set of interchangeable lenses
// compatible with the camera.
func (s *GearService) SetCameraLenses(cameraID int64, lensIDs []int64) error {
	camera, err := s.GetCamera(cameraID)
	if err != nil {
		return err
	}
	if camera.IsFixedLens() {
		return fmt.Errorf("%w: %s has a fixed lens", ErrInvalidInput, camera.Name())
	}
	lensRepo := lenses.NewRepository(s.db)
	if err := requireIDs("lens", lensIDs, lensRepo.GetLens); err != nil {
		return err
	}
	for _, id := range lensIDs {
		fixed, err := lensRepo.IsFixedLens(id)
		if err != nil {
			return err
		}
		if fixed {
			return fmt.Errorf("%w: lens %d is the fixed lens of another camera", ErrInvalidInput, id)
		}
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		linkRepo := links.NewRepository(tx)
		current, err := linkRepo.LensIDsForCamera(cameraID)
		if err != nil {
			return err
		}
		added, removed := diffIDs(current, lensIDs)
		for _, id := range added {
			if err := linkRepo.AddCameraLensLink(cameraID, id); err != nil {
				return err
			}
		}
		for _, id := range removed {
			if err := linkRepo.DeleteCameraLensLink(cameraID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.reload()
	return nil
}

// --- Lenses ---

func (s *GearService) GetLens(id int64) (*entities.Lens, error) {
	lens, err := lenses.NewRepository(s.db).GetLens(id)
	if err != nil {
		return nil, err
	}
	if lens == nil {
		return nil, fmt.Errorf("lens %d: %w", id, ErrNotFound)
	}
	return lens, nil
}

func (s *GearService) SaveLens(lens *entities.Lens) error {
	if err := validateLens(lens); err != nil {
		return err
	}
	repo := lenses.NewRepository(s.db)
	if err := rejectFixedLens(repo, lens.ID); err != nil {
		return err
	}
	if lens.ID == 0 {
		if _, err := repo.AddLens(lens); err != nil {
			return err
		}
	} else {
		affected, err := repo.UpdateLens(lens)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("lens %d: %w", lens.ID, ErrNotFound)
		}
	}
	s.logger.Info("Saved lens", zap.Int64("lens_id", lens.ID), zap.String("name", lens.Name()))
	s.reload()
	return nil
}

func (s *GearService) DeleteLens(id int64) error {
	repo := lenses.NewRepository(s.db)
	if err := rejectFixedLens(repo, id); err != nil {
		return err
	}
	inUse, err := repo.IsLensInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("lens %d: %w", id, ErrGearInUse)
	}
	affected, err := repo.DeleteLens(&entities.Lens{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("lens %d: %w", id, ErrNotFound)
	}
	s.reload()
	return nil
}

// SetLensFilters makes filterIDs the exact set of filters that fit the lens.
func (s *GearService) SetLensFilters(lensID int64, filterIDs []int64) error {
	if _, err := s.GetLens(lensID); err != nil {
		return err
	}
	if err := requireIDs("filter", filterIDs, filters.NewRepository(s.db).GetFilter); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		linkRepo := links.NewRepository(tx)
		current, err := linkRepo.FilterIDsForLens(lensID)
		if err != nil {
			return err
		}
		added, removed := diffIDs(current, filterIDs)
		for _, id := range added {
			if err := linkRepo.AddLensFilterLink(lensID, id); err != nil {
				return err
			}
		}
		for _, id := range removed {
			if err := linkRepo.DeleteLensFilterLink(lensID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.reload()
	return nil
}

// --- Filters ---

func (s *GearService) GetFilter(id int64) (*entities.Filter, error) {
	filter, err := filters.NewRepository(s.db).GetFilter(id)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, fmt.Errorf("filter %d: %w", id, ErrNotFound)
	}
	return filter, nil
}

func (s *GearService) SaveFilter(filter *entities.Filter) error {
	if strings.TrimSpace(filter.Make) == "" || strings.TrimSpace(filter.Model) == "" {
		return fmt.Errorf("%w: filter make and model are required", ErrInvalidInput)
	}
	repo := filters.NewRepository(s.db)
	if filter.ID == 0 {
		if _, err := repo.AddFilter(filter); err != nil {
			return err
		}
	} else {
		affected, err := repo.UpdateFilter(filter)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("filter %d: %w", filter.ID, ErrNotFound)
		}
	}
	s.reload()
	return nil
}

func (s *GearService) DeleteFilter(id int64) error {
	repo := filters.NewRepository(s.db)
	inUse, err := repo.IsFilterInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("filter %d: %w", id, ErrGearInUse)
	}
	affected, err := repo.DeleteFilter(&entities.Filter{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("filter %d: %w", id, ErrNotFound)
	}
	s.reload()
	return nil
}

// rejectFixedLens fails for a lens that belongs to a fixed-lens camera. Such
// a lens is edited and deleted through its camera.
func rejectFixedLens(repo *lenses.Repository, id int64) error {
	if id == 0 {
		return nil
	}
	fixed, err := repo.IsFixedLens(id)
	if err != nil {
		return err
	}
	if fixed {
		return fmt.Errorf("%w: lens %d is the fixed lens of a camera", ErrInvalidInput, id)
	}
	return nil
}

// requireIDs fails with ErrNotFound for the first ID that get cannot find.
func requireIDs[T any](kind string, ids []int64, get func(int64) (*T, error)) error {
	for _, id := range ids {
		found, err := get(id)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
		}
	}
	return nil
}

// diffIDs returns the IDs in desired but not in current, and the IDs in
// current but not in desired.
func diffIDs(current, desired []int64) (added, removed []int64) {
	for _, id := range desired {
		if !slices.Contains(current, id) && !slices.Contains(added, id) {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if !slices.Contains(desired, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func validateCamera(camera *entities.Camera) error {
	if strings.TrimSpace(camera.Make) == "" || strings.TrimSpace(camera.Model) == "" {
		return fmt.Errorf("%w: camera make and model are required", ErrInvalidInput)
	}
	if camera.ShutterIncrements != "" && !camera.ShutterIncrements.Valid() {
		return fmt.Errorf("%w: unknown shutter increment %q", ErrInvalidInput, camera.ShutterIncrements)
	}
	if camera.ExposureCompIncrements == entities.IncrementFull {
		return fmt.Errorf("%w: exposure compensation increment must be third or half", ErrInvalidInput)
	}
	if camera.ExposureCompIncrements != "" && !camera.ExposureCompIncrements.Valid() {
		return fmt.Errorf("%w: unknown exposure compensation increment %q", ErrInvalidInput, camera.ExposureCompIncrements)
	}
	if camera.Format != "" && !camera.Format.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidInput, camera.Format)
	}
	if camera.Lens != nil {
		return validateLens(camera.Lens)
	}
	return nil
}

func validateLens(lens *entities.Lens) error {
	if strings.TrimSpace(lens.Make) == "" && strings.TrimSpace(lens.Model) == "" {
		return fmt.Errorf("%w: lens make or model is required", ErrInvalidInput)
	}
	if lens.ApertureIncrements != "" && !lens.ApertureIncrements.Valid() {
		return fmt.Errorf("%w: unknown aperture increment %q", ErrInvalidInput, lens.ApertureIncrements)
	}
	if lens.MinFocalLength > 0 && lens.MaxFocalLength > 0 && lens.MinFocalLength > lens.MaxFocalLength {
		return fmt.Errorf("%w: minimum focal length exceeds maximum", ErrInvalidInput)
	}
	return nil
}

// Package cameras provides database operations for cameras.
//
// A fixed-lens camera owns its lens row. The lens is written in the same
// transaction as the camera and removed together with it.
//
// # Usage
//
//	repo := cameras.NewRepository(db)
//	id, err := repo.AddCamera(&entities.Camera{Make: "Canon", Model: "A-1"})
//	affected, err := repo.UpdateCamera(camera) // 0 when the camera does not exist
package cameras

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/lenses"
	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// errCameraMissing rolls back an update whose camera row does not exist.
var errCameraMissing = errors.New("camera row missing")

// Repository handles all camera database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cameras repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddCamera inserts a camera, and its fixed lens if it has one, and assigns
// the generated IDs.
func (r *Repository) AddCamera(camera *entities.Camera) (int64, error) {
	var lensID int64
	if camera.Lens != nil {
		lensID = camera.Lens.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		camera.LensID = nil
		if camera.Lens != nil {
			camera.Lens.ID = 0
			id, err := lenses.NewRepository(tx).AddLens(camera.Lens)
			if err != nil {
				return err
			}
			camera.LensID = &id
		}
		if err := tx.Omit(clause.Associations).Create(camera).Error; err != nil {
			return fmt.Errorf("add camera: %w", err)
		}
		return nil
	})
	if err != nil {
		camera.ID = 0
		if camera.Lens != nil {
			camera.Lens.ID = lensID
		}
		return 0, err
	}
	return camera.ID, nil
}

// UpdateCamera overwrites the camera row and upserts its fixed lens in one
// transaction. The transaction is rolled back when the camera row does not
// exist, in which case 0 is returned. A fixed lens that is cleared or
// replaced is deleted. A lens carrying the ID of some other existing lens is
// stored as a new row.
func (r *Repository) UpdateCamera(camera *entities.Camera) (int64, error) {
	if camera.ID == 0 {
		return 0, nil
	}

	var lensID int64
	if camera.Lens != nil {
		lensID = camera.Lens.ID
	}
	previousLensID := camera.LensID

	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		lensRepo := lenses.NewRepository(tx)

		var current entities.Camera
		err := tx.Select(schema.ColCameraLensID).Where(schema.ColCameraID+" = ?", camera.ID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errCameraMissing
		}
		if err != nil {
			return fmt.Errorf("load camera %d: %w", camera.ID, err)
		}

		camera.LensID = nil
		if camera.Lens != nil {
			if err := saveOwnedLens(lensRepo, camera.Lens, current.LensID); err != nil {
				return err
			}
			id := camera.Lens.ID
			camera.LensID = &id
		}

		result := tx.Model(&entities.Camera{}).
			Where(schema.ColCameraID+" = ?", camera.ID).
			Updates(Values(camera))
		if result.Error != nil {
			return fmt.Errorf("update camera %d: %w", camera.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return errCameraMissing
		}
		affected = result.RowsAffected

		if current.LensID != nil && (camera.LensID == nil || *camera.LensID != *current.LensID) {
			if err := lensRepo.DeleteOwnedLens(*current.LensID); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		camera.LensID = previousLensID
		if camera.Lens != nil {
			camera.Lens.ID = lensID
		}
		if errors.Is(err, errCameraMissing) {
			return 0, nil
		}
		return 0, err
	}
	return affected, nil
}

// UpsertCamera inserts the camera or overwrites the row with the same ID,
// applying the same fixed-lens rules as UpdateCamera.
func (r *Repository) UpsertCamera(camera *entities.Camera) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		lensRepo := lenses.NewRepository(tx)

		var previous *int64
		if camera.ID != 0 {
			var current entities.Camera
			err := tx.Select(schema.ColCameraLensID).Where(schema.ColCameraID+" = ?", camera.ID).First(&current).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load camera %d: %w", camera.ID, err)
			}
			previous = current.LensID
		}

		camera.LensID = nil
		if camera.Lens != nil {
			if err := saveOwnedLens(lensRepo, camera.Lens, previous); err != nil {
				return err
			}
			id := camera.Lens.ID
			camera.LensID = &id
		}

		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: schema.ColCameraID}},
			UpdateAll: true,
		}).Create(camera).Error
		if err != nil {
			return fmt.Errorf("upsert camera: %w", err)
		}

		if previous != nil && (camera.LensID == nil || *camera.LensID != *previous) {
			return lensRepo.DeleteOwnedLens(*previous)
		}
		return nil
	})
}

// saveOwnedLens writes a camera's fixed lens. owned is the lens row the
// camera currently holds and the only existing row that may be overwritten.
// A lens pointing at any other existing row is inserted as a new row; one
// pointing at a missing row keeps its ID.
func saveOwnedLens(repo *lenses.Repository, lens *entities.Lens, owned *int64) error {
	if lens.ID != 0 && (owned == nil || lens.ID != *owned) {
		existing, err := repo.GetLens(lens.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			lens.ID = 0
		}
	}
	if lens.ID == 0 {
		_, err := repo.AddLens(lens)
		return err
	}
	return repo.UpsertLens(lens)
}

// DeleteCamera removes the camera, its lens links and its fixed lens. Rolls
// that reference the camera keep their camera ID; check IsCameraInUse first.
func (r *Repository) DeleteCamera(camera *entities.Camera) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current entities.Camera
		err := tx.Select(schema.ColCameraLensID).Where(schema.ColCameraID+" = ?", camera.ID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load camera %d: %w", camera.ID, err)
		}

		if err := links.NewRepository(tx).DeleteCameraLinks(camera.ID); err != nil {
			return err
		}

		result := tx.Where(schema.ColCameraID+" = ?", camera.ID).Delete(&entities.Camera{})
		if result.Error != nil {
			return fmt.Errorf("delete camera %d: %w", camera.ID, result.Error)
		}
		affected = result.RowsAffected

		if current.LensID != nil {
			return lenses.NewRepository(tx).DeleteOwnedLens(*current.LensID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// GetCamera returns the camera with the given ID, or nil when it does not exist.
func (r *Repository) GetCamera(id int64) (*entities.Camera, error) {
	var camera entities.Camera
	err := r.db.Where(schema.ColCameraID+" = ?", id).First(&camera).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get camera %d: %w", id, err)
	}
	if err := r.hydrate(&camera); err != nil {
		return nil, err
	}
	return &camera, nil
}

// GetCameras returns all cameras with their fixed lens and compatible lens IDs.
func (r *Repository) GetCameras() ([]entities.Camera, error) {
	var cameras []entities.Camera
	err := r.db.Order(schema.ColCameraMake + ", " + schema.ColCameraModel).Find(&cameras).Error
	if err != nil {
		return nil, fmt.Errorf("get cameras: %w", err)
	}
	for i := range cameras {
		if err := r.hydrate(&cameras[i]); err != nil {
			return nil, err
		}
	}
	return cameras, nil
}

// IsCameraInUse reports whether any roll references the camera.
func (r *Repository) IsCameraInUse(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Roll{}).Where(schema.ColRollCameraID+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check camera %d usage: %w", id, err)
	}
	return count > 0, nil
}

func (r *Repository) hydrate(camera *entities.Camera) error {
	if camera.LensID != nil {
		lens, err := lenses.NewRepository(r.db).GetLens(*camera.LensID)
		if err != nil {
			return err
		}
		camera.Lens = lens
	}
	ids, err := links.NewRepository(r.db).LensIDsForCamera(camera.ID)
	if err != nil {
		return err
	}
	camera.LensIDs = ids
	return nil
}

// Values maps a camera to its column values for full-row updates.
func Values(camera *entities.Camera) map[string]any {
	return map[string]any{
		schema.ColCameraMake:             camera.Make,
		schema.ColCameraModel:            camera.Model,
		schema.ColCameraSerialNo:         camera.SerialNumber,
		schema.ColCameraMinShutter:       camera.MinShutter,
		schema.ColCameraMaxShutter:       camera.MaxShutter,
		schema.ColCameraShutterIncrement: camera.ShutterIncrements,
		schema.ColCameraExpCompIncrement: camera.ExposureCompIncrements,
		schema.ColCameraFormat:           camera.Format,
		schema.ColCameraLensID:           camera.LensID,
	}
}

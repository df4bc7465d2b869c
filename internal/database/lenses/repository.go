// Package lenses provides database operations for lenses.
//
// Lenses owned by fixed-lens cameras live in the same table but are managed
// through the cameras repository and are hidden from GetLenses.
package lenses

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// Repository handles all lens database operations.
type Repository struct {
	db    *gorm.DB
	links *links.Repository
}

// NewRepository creates a new lenses repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, links: links.NewRepository(db)}
}

// AddLens inserts a lens and assigns the generated ID to it.
func (r *Repository) AddLens(lens *entities.Lens) (int64, error) {
	if err := r.db.Omit(clause.Associations).Create(lens).Error; err != nil {
		return 0, fmt.Errorf("add lens: %w", err)
	}
	return lens.ID, nil
}

// UpdateLens overwrites the lens row. It returns the number of affected rows;
// zero means the lens does not exist.
func (r *Repository) UpdateLens(lens *entities.Lens) (int64, error) {
	if lens.ID == 0 {
		return 0, nil
	}
	result := r.db.Model(&entities.Lens{}).
		Where(schema.ColLensID+" = ?", lens.ID).
		Updates(Values(lens))
	if result.Error != nil {
		return 0, fmt.Errorf("update lens %d: %w", lens.ID, result.Error)
	}
	return result.RowsAffected, nil
}

// UpsertLens inserts the lens or overwrites the existing row with the same ID.
func (r *Repository) UpsertLens(lens *entities.Lens) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: schema.ColLensID}},
		UpdateAll: true,
	}).Create(lens).Error
	if err != nil {
		return fmt.Errorf("upsert lens: %w", err)
	}
	return nil
}

// DeleteLens removes the lens and its camera and filter links. Frames that
// reference the lens keep their lens ID; check IsLensInUse first.
func (r *Repository) DeleteLens(lens *entities.Lens) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		affected, err = NewRepository(tx).deleteLensTx(lens.ID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// deleteLensTx expects to run inside a transaction.
func (r *Repository) deleteLensTx(id int64) (int64, error) {
	if err := r.links.DeleteLensLinks(id); err != nil {
		return 0, err
	}
	result := r.db.Where(schema.ColLensID+" = ?", id).Delete(&entities.Lens{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete lens %d: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOwnedLens removes a fixed lens row and its filter links. The caller
// must run it inside the camera transaction.
func (r *Repository) DeleteOwnedLens(id int64) error {
	_, err := r.deleteLensTx(id)
	return err
}

// GetLens returns the lens with the given ID, or nil when it does not exist.
func (r *Repository) GetLens(id int64) (*entities.Lens, error) {
	var lens entities.Lens
	err := r.db.Where(schema.ColLensID+" = ?", id).First(&lens).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lens %d: %w", id, err)
	}
	if err := r.hydrate(&lens); err != nil {
		return nil, err
	}
	return &lens, nil
}

// GetLenses returns all interchangeable lenses with their camera and filter
// IDs. Lenses owned by fixed-lens cameras are excluded.
func (r *Repository) GetLenses() ([]entities.Lens, error) {
	var lenses []entities.Lens
	owned := fmt.Sprintf("%s NOT IN (SELECT %s FROM %s WHERE %s IS NOT NULL)",
		schema.ColLensID, schema.ColCameraLensID, schema.TableCameras, schema.ColCameraLensID)
	err := r.db.Where(owned).
		Order(schema.ColLensMake + ", " + schema.ColLensModel).
		Find(&lenses).Error
	if err != nil {
		return nil, fmt.Errorf("get lenses: %w", err)
	}
	for i := range lenses {
		if err := r.hydrate(&lenses[i]); err != nil {
			return nil, err
		}
	}
	return lenses, nil
}

// IsLensInUse reports whether any frame references the lens.
func (r *Repository) IsLensInUse(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Frame{}).Where(schema.ColFrameLensID+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check lens %d usage: %w", id, err)
	}
	return count > 0, nil
}

// IsFixedLens reports whether a camera owns the lens as its fixed lens.
func (r *Repository) IsFixedLens(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Camera{}).Where(schema.ColCameraLensID+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check lens %d owner: %w", id, err)
	}
	return count > 0, nil
}

func (r *Repository) hydrate(lens *entities.Lens) error {
	cameraIDs, err := r.links.CameraIDsForLens(lens.ID)
	if err != nil {
		return err
	}
	filterIDs, err := r.links.FilterIDsForLens(lens.ID)
	if err != nil {
		return err
	}
	lens.CameraIDs = cameraIDs
	lens.FilterIDs = filterIDs
	return nil
}

// Values maps a lens to its column values for full-row updates.
func Values(lens *entities.Lens) map[string]any {
	return map[string]any{
		schema.ColLensMake:              lens.Make,
		schema.ColLensModel:             lens.Model,
		schema.ColLensSerialNo:          lens.SerialNumber,
		schema.ColLensMinAperture:       lens.MinAperture,
		schema.ColLensMaxAperture:       lens.MaxAperture,
		schema.ColLensMinFocalLength:    lens.MinFocalLength,
		schema.ColLensMaxFocalLength:    lens.MaxFocalLength,
		schema.ColLensApertureIncrement: lens.ApertureIncrements,
		schema.ColLensCustomApertures:   lens.CustomApertureValues,
	}
}

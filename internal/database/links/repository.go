// Package links manages the many-to-many association tables of the logbook:
// camera↔lens, lens↔filter, frame↔filter and roll↔label.
//
// Inserts are idempotent. A link that already exists is left untouched, so
// callers may add the same pair repeatedly without creating duplicate rows.
// There is no bulk "set" operation; callers diff desired and current sets and
// call the add and delete methods themselves.
//
// # Usage
//
//	repo := links.NewRepository(db)
//	err := repo.AddCameraLensLink(cameraID, lensID)
//	lenses, err := repo.GetLinkedLenses(cameraID)
package links

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// Repository handles all link table operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new links repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// addLink inserts (a, b) into table unless the pair is already present.
func (r *Repository) addLink(table, colA, colB string, a, b int64) error {
	query := fmt.Sprintf(
		"INSERT INTO %[1]s (%[2]s, %[3]s) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM %[1]s WHERE %[2]s = ? AND %[3]s = ?)",
		table, colA, colB,
	)
	if err := r.db.Exec(query, a, b, a, b).Error; err != nil {
		return fmt.Errorf("add %s link: %w", table, err)
	}
	return nil
}

func (r *Repository) deleteLink(table, colA, colB string, a, b int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", table, colA, colB)
	if err := r.db.Exec(query, a, b).Error; err != nil {
		return fmt.Errorf("delete %s link: %w", table, err)
	}
	return nil
}

func (r *Repository) deleteAll(table, col string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col)
	if err := r.db.Exec(query, id).Error; err != nil {
		return fmt.Errorf("delete %s links: %w", table, err)
	}
	return nil
}

func (r *Repository) linkedIDs(table, selectCol, whereCol string, id int64) ([]int64, error) {
	var ids []int64
	err := r.db.Table(table).Where(whereCol+" = ?", id).Order(selectCol).Pluck(selectCol, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list %s links: %w", table, err)
	}
	return ids, nil
}

func subquery(selectCol, table, whereCol string) string {
	return fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)", selectCol, selectCol, table, whereCol)
}

// --- Camera ↔ Lens ---

func (r *Repository) AddCameraLensLink(cameraID, lensID int64) error {
	return r.addLink(schema.TableCameraLens, schema.ColCameraID, schema.ColLensID, cameraID, lensID)
}

func (r *Repository) DeleteCameraLensLink(cameraID, lensID int64) error {
	return r.deleteLink(schema.TableCameraLens, schema.ColCameraID, schema.ColLensID, cameraID, lensID)
}

// DeleteCameraLinks removes every lens link of a camera.
func (r *Repository) DeleteCameraLinks(cameraID int64) error {
	return r.deleteAll(schema.TableCameraLens, schema.ColCameraID, cameraID)
}

// GetLinkedLenses returns the interchangeable lenses compatible with a camera.
func (r *Repository) GetLinkedLenses(cameraID int64) ([]entities.Lens, error) {
	var lenses []entities.Lens
	err := r.db.Where(subquery(schema.ColLensID, schema.TableCameraLens, schema.ColCameraID), cameraID).
		Order(schema.ColLensMake + ", " + schema.ColLensModel).
		Find(&lenses).Error
	if err != nil {
		return nil, fmt.Errorf("get linked lenses: %w", err)
	}
	return lenses, nil
}

// GetLinkedCameras returns the cameras a lens is compatible with.
func (r *Repository) GetLinkedCameras(lensID int64) ([]entities.Camera, error) {
	var cameras []entities.Camera
	err := r.db.Where(subquery(schema.ColCameraID, schema.TableCameraLens, schema.ColLensID), lensID).
		Order(schema.ColCameraMake + ", " + schema.ColCameraModel).
		Find(&cameras).Error
	if err != nil {
		return nil, fmt.Errorf("get linked cameras: %w", err)
	}
	return cameras, nil
}

func (r *Repository) LensIDsForCamera(cameraID int64) ([]int64, error) {
	return r.linkedIDs(schema.TableCameraLens, schema.ColLensID, schema.ColCameraID, cameraID)
}

func (r *Repository) CameraIDsForLens(lensID int64) ([]int64, error) {
	return r.linkedIDs(schema.TableCameraLens, schema.ColCameraID, schema.ColLensID, lensID)
}

// --- Lens ↔ Filter ---

func (r *Repository) AddLensFilterLink(lensID, filterID int64) error {
	return r.addLink(schema.TableLensFilter, schema.ColLensID, schema.ColFilterID, lensID, filterID)
}

func (r *Repository) DeleteLensFilterLink(lensID, filterID int64) error {
	return r.deleteLink(schema.TableLensFilter, schema.ColLensID, schema.ColFilterID, lensID, filterID)
}

// DeleteLensLinks removes every camera and filter link of a lens.
func (r *Repository) DeleteLensLinks(lensID int64) error {
	if err := r.deleteAll(schema.TableCameraLens, schema.ColLensID, lensID); err != nil {
		return err
	}
	return r.deleteAll(schema.TableLensFilter, schema.ColLensID, lensID)
}

// DeleteFilterLinks removes every lens and frame link of a filter.
func (r *Repository) DeleteFilterLinks(filterID int64) error {
	if err := r.deleteAll(schema.TableLensFilter, schema.ColFilterID, filterID); err != nil {
		return err
	}
	return r.deleteAll(schema.TableFrameFilter, schema.ColFilterID, filterID)
}

// GetLinkedFilters returns the filters that fit a lens.
func (r *Repository) GetLinkedFilters(lensID int64) ([]entities.Filter, error) {
	var filters []entities.Filter
	err := r.db.Where(subquery(schema.ColFilterID, schema.TableLensFilter, schema.ColLensID), lensID).
		Order(schema.ColFilterMake + ", " + schema.ColFilterModel).
		Find(&filters).Error
	if err != nil {
		return nil, fmt.Errorf("get linked filters: %w", err)
	}
	return filters, nil
}

// GetLinkedLensesForFilter returns the lenses a filter fits.
func (r *Repository) GetLinkedLensesForFilter(filterID int64) ([]entities.Lens, error) {
	var lenses []entities.Lens
	err := r.db.Where(subquery(schema.ColLensID, schema.TableLensFilter, schema.ColFilterID), filterID).
		Order(schema.ColLensMake + ", " + schema.ColLensModel).
		Find(&lenses).Error
	if err != nil {
		return nil, fmt.Errorf("get linked lenses for filter: %w", err)
	}
	return lenses, nil
}

func (r *Repository) FilterIDsForLens(lensID int64) ([]int64, error) {
	return r.linkedIDs(schema.TableLensFilter, schema.ColFilterID, schema.ColLensID, lensID)
}

func (r *Repository) LensIDsForFilter(filterID int64) ([]int64, error) {
	return r.linkedIDs(schema.TableLensFilter, schema.ColLensID, schema.ColFilterID, filterID)
}

// --- Frame ↔ Filter ---

func (r *Repository) AddFrameFilterLink(frameID, filterID int64) error {
	return r.addLink(schema.TableFrameFilter, schema.ColFrameID, schema.ColFilterID, frameID, filterID)
}

// DeleteFrameFilterLinks removes every filter link of a frame.
func (r *Repository) DeleteFrameFilterLinks(frameID int64) error {
	return r.deleteAll(schema.TableFrameFilter, schema.ColFrameID, frameID)
}

// GetFrameFilters returns the filters used for a frame.
func (r *Repository) GetFrameFilters(frameID int64) ([]entities.Filter, error) {
	var filters []entities.Filter
	err := r.db.Where(subquery(schema.ColFilterID, schema.TableFrameFilter, schema.ColFrameID), frameID).
		Order(schema.ColFilterMake + ", " + schema.ColFilterModel).
		Find(&filters).Error
	if err != nil {
		return nil, fmt.Errorf("get frame filters: %w", err)
	}
	return filters, nil
}

// --- Roll ↔ Label ---

func (r *Repository) AddRollLabelLink(rollID, labelID int64) error {
	return r.addLink(schema.TableRollLabel, schema.ColRollID, schema.ColLabelID, rollID, labelID)
}

// DeleteRollLabelLinks removes every label link of a roll.
func (r *Repository) DeleteRollLabelLinks(rollID int64) error {
	return r.deleteAll(schema.TableRollLabel, schema.ColRollID, rollID)
}

// DeleteLabelLinks removes a label from every roll.
func (r *Repository) DeleteLabelLinks(labelID int64) error {
	return r.deleteAll(schema.TableRollLabel, schema.ColLabelID, labelID)
}

// GetRollLabels returns the labels attached to a roll.
func (r *Repository) GetRollLabels(rollID int64) ([]entities.Label, error) {
	var labels []entities.Label
	err := r.db.Where(subquery(schema.ColLabelID, schema.TableRollLabel, schema.ColRollID), rollID).
		Order(schema.ColLabelName).
		Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("get roll labels: %w", err)
	}
	return labels, nil
}

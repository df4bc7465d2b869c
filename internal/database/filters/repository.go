package filters

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// Repository handles all filter database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new filters repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AddFilter(filter *entities.Filter) (int64, error) {
	if err := r.db.Omit(clause.Associations).Create(filter).Error; err != nil {
		return 0, fmt.Errorf("add filter: %w", err)
	}
	return filter.ID, nil
}

// UpdateFilter overwrites the filter row and returns the affected row count.
func (r *Repository) UpdateFilter(filter *entities.Filter) (int64, error) {
	if filter.ID == 0 {
		return 0, nil
	}
	result := r.db.Model(&entities.Filter{}).
		Where(schema.ColFilterID+" = ?", filter.ID).
		Updates(map[string]any{
			schema.ColFilterMake:  filter.Make,
			schema.ColFilterModel: filter.Model,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update filter %d: %w", filter.ID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) UpsertFilter(filter *entities.Filter) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: schema.ColFilterID}},
		UpdateAll: true,
	}).Create(filter).Error
	if err != nil {
		return fmt.Errorf("upsert filter: %w", err)
	}
	return nil
}

// DeleteFilter removes the filter together with its lens and frame links.
func (r *Repository) DeleteFilter(filter *entities.Filter) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := links.NewRepository(tx).DeleteFilterLinks(filter.ID); err != nil {
			return err
		}
		result := tx.Where(schema.ColFilterID+" = ?", filter.ID).Delete(&entities.Filter{})
		if result.Error != nil {
			return fmt.Errorf("delete filter %d: %w", filter.ID, result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// GetFilter returns the filter with the given ID, or nil when it does not exist.
func (r *Repository) GetFilter(id int64) (*entities.Filter, error) {
	var filter entities.Filter
	err := r.db.Where(schema.ColFilterID+" = ?", id).First(&filter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get filter %d: %w", id, err)
	}
	if filter.LensIDs, err = links.NewRepository(r.db).LensIDsForFilter(id); err != nil {
		return nil, err
	}
	return &filter, nil
}

// GetFilters returns all filters with the IDs of the lenses they fit.
func (r *Repository) GetFilters() ([]entities.Filter, error) {
	var filters []entities.Filter
	err := r.db.Order(schema.ColFilterMake + ", " + schema.ColFilterModel).Find(&filters).Error
	if err != nil {
		return nil, fmt.Errorf("get filters: %w", err)
	}
	linkRepo := links.NewRepository(r.db)
	for i := range filters {
		if filters[i].LensIDs, err = linkRepo.LensIDsForFilter(filters[i].ID); err != nil {
			return nil, err
		}
	}
	return filters, nil
}

// IsFilterInUse reports whether any frame was shot with the filter.
func (r *Repository) IsFilterInUse(id int64) (bool, error) {
	var count int64
	err := r.db.Table(schema.TableFrameFilter).Where(schema.ColFilterID+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check filter %d usage: %w", id, err)
	}
	return count > 0, nil
}

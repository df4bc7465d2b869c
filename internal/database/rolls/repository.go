// Package rolls provides database operations for rolls.
//
// A roll owns its frames. Deleting a roll removes the frames, their filter
// links and the roll's label links in one transaction. Label links are
// rewritten from Roll.Labels on every add, update and upsert.
//
// # Usage
//
//	repo := rolls.NewRepository(db)
//	list, err := repo.GetRolls(rolls.RollFilter{Mode: rolls.FilterActive})
package rolls

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/cameras"
	"github.com/exifnotes/logbook/internal/database/filmstocks"
	"github.com/exifnotes/logbook/internal/database/frames"
	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// FilterMode selects which rolls GetRolls returns.
type FilterMode string

const (
	FilterActive    FilterMode = "active"
	FilterArchived  FilterMode = "archived"
	FilterFavorites FilterMode = "favorites"
	FilterAll       FilterMode = "all"
)

// Valid reports whether m is a known filter mode.
func (m FilterMode) Valid() bool {
	switch m {
	case FilterActive, FilterArchived, FilterFavorites, FilterAll:
		return true
	}
	return false
}

// RollFilter narrows GetRolls. An empty Mode behaves like FilterActive.
// LabelID, when set, keeps only rolls carrying that label.
type RollFilter struct {
	Mode    FilterMode `json:"mode"`
	LabelID *int64     `json:"label_id,omitempty"`
}

// Repository handles all roll database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new rolls repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddRoll inserts the roll with its label links and assigns the generated ID.
func (r *Repository) AddRoll(roll *entities.Roll) (int64, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(roll).Error; err != nil {
			return fmt.Errorf("add roll: %w", err)
		}
		return replaceLabelLinks(tx, roll)
	})
	if err != nil {
		roll.ID = 0
		return 0, err
	}
	return roll.ID, nil
}

// UpdateRoll overwrites the roll row and replaces its label links. Zero
// affected rows means the roll does not exist; its links are left alone.
func (r *Repository) UpdateRoll(roll *entities.Roll) (int64, error) {
	if roll.ID == 0 {
		return 0, nil
	}
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Roll{}).
			Where(schema.ColRollID+" = ?", roll.ID).
			Updates(Values(roll))
		if result.Error != nil {
			return fmt.Errorf("update roll %d: %w", roll.ID, result.Error)
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return replaceLabelLinks(tx, roll)
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// UpsertRoll inserts the roll or overwrites the row with the same ID, then
// replaces its label links.
func (r *Repository) UpsertRoll(roll *entities.Roll) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: schema.ColRollID}},
			UpdateAll: true,
		}).Create(roll).Error
		if err != nil {
			return fmt.Errorf("upsert roll: %w", err)
		}
		return replaceLabelLinks(tx, roll)
	})
}

// DeleteRoll removes the roll, its frames and every link that points at them.
func (r *Repository) DeleteRoll(roll *entities.Roll) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := frames.NewRepository(tx).DeleteRollFrames(roll.ID); err != nil {
			return err
		}
		if err := links.NewRepository(tx).DeleteRollLabelLinks(roll.ID); err != nil {
			return err
		}
		result := tx.Where(schema.ColRollID+" = ?", roll.ID).Delete(&entities.Roll{})
		if result.Error != nil {
			return fmt.Errorf("delete roll %d: %w", roll.ID, result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// GetRoll returns the roll with the given ID, or nil when it does not exist.
func (r *Repository) GetRoll(id int64) (*entities.Roll, error) {
	var roll entities.Roll
	err := r.db.Where(schema.ColRollID+" = ?", id).First(&roll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get roll %d: %w", id, err)
	}
	if err := r.newHydrator().hydrate(&roll); err != nil {
		return nil, err
	}
	return &roll, nil
}

// GetRolls returns the rolls matching filter with camera, film stock, labels
// and frame count filled in. Ordering is left to the caller.
func (r *Repository) GetRolls(filter RollFilter) ([]entities.Roll, error) {
	query := r.db.Model(&entities.Roll{})
	switch filter.Mode {
	case FilterArchived:
		query = query.Where(schema.ColRollArchived+" = ?", true)
	case FilterFavorites:
		query = query.Where(schema.ColRollFavorite+" = ?", true)
	case FilterAll:
	default:
		query = query.Where(schema.ColRollArchived+" = ?", false)
	}
	if filter.LabelID != nil {
		query = query.Where(
			fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)",
				schema.ColRollID, schema.ColRollID, schema.TableRollLabel, schema.ColLabelID),
			*filter.LabelID,
		)
	}

	var rolls []entities.Roll
	if err := query.Find(&rolls).Error; err != nil {
		return nil, fmt.Errorf("get rolls: %w", err)
	}
	h := r.newHydrator()
	for i := range rolls {
		if err := h.hydrate(&rolls[i]); err != nil {
			return nil, err
		}
	}
	return rolls, nil
}

// hydrator fills a roll's related entities, caching cameras and film stocks
// shared across a list.
type hydrator struct {
	db         *gorm.DB
	cameras    map[int64]*entities.Camera
	filmStocks map[int64]*entities.FilmStock
}

func (r *Repository) newHydrator() *hydrator {
	return &hydrator{
		db:         r.db,
		cameras:    make(map[int64]*entities.Camera),
		filmStocks: make(map[int64]*entities.FilmStock),
	}
}

func (h *hydrator) hydrate(roll *entities.Roll) error {
	roll.Camera = nil
	if roll.CameraID != nil {
		camera, ok := h.cameras[*roll.CameraID]
		if !ok {
			var err error
			if camera, err = cameras.NewRepository(h.db).GetCamera(*roll.CameraID); err != nil {
				return err
			}
			h.cameras[*roll.CameraID] = camera
		}
		roll.Camera = camera
	}

	roll.FilmStock = nil
	if roll.FilmStockID != nil {
		stock, ok := h.filmStocks[*roll.FilmStockID]
		if !ok {
			var err error
			if stock, err = filmstocks.NewRepository(h.db).GetFilmStock(*roll.FilmStockID); err != nil {
				return err
			}
			h.filmStocks[*roll.FilmStockID] = stock
		}
		roll.FilmStock = stock
	}

	labels, err := links.NewRepository(h.db).GetRollLabels(roll.ID)
	if err != nil {
		return err
	}
	roll.Labels = labels

	count, err := frames.NewRepository(h.db).GetFrameCount(roll.ID)
	if err != nil {
		return err
	}
	roll.FrameCount = count
	return nil
}

func replaceLabelLinks(tx *gorm.DB, roll *entities.Roll) error {
	linkRepo := links.NewRepository(tx)
	if err := linkRepo.DeleteRollLabelLinks(roll.ID); err != nil {
		return err
	}
	for _, label := range roll.Labels {
		if err := linkRepo.AddRollLabelLink(roll.ID, label.ID); err != nil {
			return err
		}
	}
	return nil
}

// Values maps a roll to its column values for full-row updates.
func Values(roll *entities.Roll) map[string]any {
	return map[string]any{
		schema.ColRollName:        roll.Name,
		schema.ColRollDate:        roll.Date,
		schema.ColRollUnloaded:    roll.Unloaded,
		schema.ColRollDeveloped:   roll.Developed,
		schema.ColRollNote:        roll.Note,
		schema.ColRollCameraID:    roll.CameraID,
		schema.ColRollISO:         roll.ISO,
		schema.ColRollPushPull:    roll.PushPull,
		schema.ColRollFormat:      roll.Format,
		schema.ColRollArchived:    roll.Archived,
		schema.ColRollFavorite:    roll.Favorite,
		schema.ColRollFilmStockID: roll.FilmStockID,
	}
}

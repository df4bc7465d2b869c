package labels

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// Repository handles all label database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new labels repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AddLabel(label *entities.Label) (int64, error) {
	if err := r.db.Create(label).Error; err != nil {
		return 0, fmt.Errorf("add label: %w", err)
	}
	return label.ID, nil
}

// UpdateLabel renames the label and returns the affected row count.
func (r *Repository) UpdateLabel(label *entities.Label) (int64, error) {
	if label.ID == 0 {
		return 0, nil
	}
	result := r.db.Model(&entities.Label{}).
		Where(schema.ColLabelID+" = ?", label.ID).
		Update(schema.ColLabelName, label.Name)
	if result.Error != nil {
		return 0, fmt.Errorf("update label %d: %w", label.ID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) UpsertLabel(label *entities.Label) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: schema.ColLabelID}},
		UpdateAll: true,
	}).Create(label).Error
	if err != nil {
		return fmt.Errorf("upsert label: %w", err)
	}
	return nil
}

// DeleteLabel removes the label from every roll and then deletes it.
func (r *Repository) DeleteLabel(label *entities.Label) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := links.NewRepository(tx).DeleteLabelLinks(label.ID); err != nil {
			return err
		}
		result := tx.Where(schema.ColLabelID+" = ?", label.ID).Delete(&entities.Label{})
		if result.Error != nil {
			return fmt.Errorf("delete label %d: %w", label.ID, result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// labelRow is the result of the label/roll-count join.
type labelRow struct {
	LabelID   int64
	LabelName string
	RollCount int
}

func (row labelRow) label() entities.Label {
	return entities.Label{ID: row.LabelID, Name: row.LabelName, RollCount: row.RollCount}
}

func (r *Repository) countQuery() *gorm.DB {
	return r.db.Table(schema.TableLabels+" AS l").
		Select(fmt.Sprintf("l.%[1]s AS label_id, l.%[2]s AS label_name, COUNT(rl.%[3]s) AS roll_count",
			schema.ColLabelID, schema.ColLabelName, schema.ColRollID)).
		Joins(fmt.Sprintf("LEFT JOIN %s AS rl ON rl.%[2]s = l.%[2]s", schema.TableRollLabel, schema.ColLabelID)).
		Group("l." + schema.ColLabelID)
}

// GetLabel returns the label with its roll count, or nil when it does not exist.
func (r *Repository) GetLabel(id int64) (*entities.Label, error) {
	var rows []labelRow
	err := r.countQuery().Where("l."+schema.ColLabelID+" = ?", id).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get label %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	label := rows[0].label()
	return &label, nil
}

// GetLabels returns every label ordered by name with the number of rolls
// carrying it.
func (r *Repository) GetLabels() ([]entities.Label, error) {
	var rows []labelRow
	err := r.countQuery().Order("l." + schema.ColLabelName).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get labels: %w", err)
	}
	labels := make([]entities.Label, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.label())
	}
	return labels, nil
}

// FindByName returns the label with the exact name, or nil.
func (r *Repository) FindByName(name string) (*entities.Label, error) {
	var label entities.Label
	err := r.db.Where(schema.ColLabelName+" = ?", name).First(&label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find label %q: %w", name, err)
	}
	return &label, nil
}

// Package frames provides database operations for frames.
//
// A frame's filters are stored in link_frame_filter. Every add, update and
// upsert rewrites the frame's filter links from Frame.Filters.
package frames

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

// Repository handles all frame database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new frames repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddFrame inserts the frame with its filter links and assigns the generated ID.
func (r *Repository) AddFrame(frame *entities.Frame) (int64, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(frame).Error; err != nil {
			return fmt.Errorf("add frame: %w", err)
		}
		return replaceFilterLinks(tx, frame)
	})
	if err != nil {
		frame.ID = 0
		return 0, err
	}
	return frame.ID, nil
}

// UpdateFrame overwrites the frame row and replaces its filter links. It
// returns the number of affected frame rows; zero means the frame does not
// exist and nothing was written.
func (r *Repository) UpdateFrame(frame *entities.Frame) (int64, error) {
	if frame.ID == 0 {
		return 0, nil
	}
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Frame{}).
			Where(schema.ColFrameID+" = ?", frame.ID).
			Updates(Values(frame))
		if result.Error != nil {
			return fmt.Errorf("update frame %d: %w", frame.ID, result.Error)
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return replaceFilterLinks(tx, frame)
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// UpsertFrame inserts the frame or overwrites the row with the same ID, then
// replaces its filter links.
func (r *Repository) UpsertFrame(frame *entities.Frame) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: schema.ColFrameID}},
			UpdateAll: true,
		}).Create(frame).Error
		if err != nil {
			return fmt.Errorf("upsert frame: %w", err)
		}
		return replaceFilterLinks(tx, frame)
	})
}

// DeleteFrame removes the frame and its filter links.
func (r *Repository) DeleteFrame(frame *entities.Frame) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := links.NewRepository(tx).DeleteFrameFilterLinks(frame.ID); err != nil {
			return err
		}
		result := tx.Where(schema.ColFrameID+" = ?", frame.ID).Delete(&entities.Frame{})
		if result.Error != nil {
			return fmt.Errorf("delete frame %d: %w", frame.ID, result.Error)
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeleteRollFrames removes every frame of a roll with their filter links.
// The caller runs it inside the roll transaction.
func (r *Repository) DeleteRollFrames(rollID int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = ?)",
		schema.TableFrameFilter, schema.ColFrameID, schema.ColFrameID, schema.TableFrames, schema.ColFrameRollID)
	if err := r.db.Exec(query, rollID).Error; err != nil {
		return fmt.Errorf("delete frame filter links of roll %d: %w", rollID, err)
	}
	if err := r.db.Where(schema.ColFrameRollID+" = ?", rollID).Delete(&entities.Frame{}).Error; err != nil {
		return fmt.Errorf("delete frames of roll %d: %w", rollID, err)
	}
	return nil
}

// GetFrame returns the frame with the given ID, or nil when it does not exist.
func (r *Repository) GetFrame(id int64) (*entities.Frame, error) {
	var frame entities.Frame
	err := r.db.Where(schema.ColFrameID+" = ?", id).First(&frame).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get frame %d: %w", id, err)
	}
	if err := r.hydrate(&frame, map[int64]*entities.Lens{}); err != nil {
		return nil, err
	}
	return &frame, nil
}

// GetFrames returns the frames of a roll with their lens and filters.
// Ordering is left to the caller.
func (r *Repository) GetFrames(rollID int64) ([]entities.Frame, error) {
	var frames []entities.Frame
	if err := r.db.Where(schema.ColFrameRollID+" = ?", rollID).Find(&frames).Error; err != nil {
		return nil, fmt.Errorf("get frames of roll %d: %w", rollID, err)
	}
	lensCache := make(map[int64]*entities.Lens)
	for i := range frames {
		if err := r.hydrate(&frames[i], lensCache); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// GetFrameCount returns the number of frames on a roll.
func (r *Repository) GetFrameCount(rollID int64) (int, error) {
	var count int64
	err := r.db.Model(&entities.Frame{}).Where(schema.ColFrameRollID+" = ?", rollID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count frames of roll %d: %w", rollID, err)
	}
	return int(count), nil
}

// GetAllPictureFilenames returns the complementary picture file names
// referenced by any frame.
func (r *Repository) GetAllPictureFilenames() ([]string, error) {
	var names []string
	err := r.db.Model(&entities.Frame{}).
		Where(schema.ColFramePictureFilename+" IS NOT NULL AND "+schema.ColFramePictureFilename+" <> ''").
		Distinct(schema.ColFramePictureFilename).
		Pluck(schema.ColFramePictureFilename, &names).Error
	if err != nil {
		return nil, fmt.Errorf("get picture filenames: %w", err)
	}
	return names, nil
}

func (r *Repository) hydrate(frame *entities.Frame, lensCache map[int64]*entities.Lens) error {
	frame.Lens = nil
	if frame.LensID != nil {
		lens, ok := lensCache[*frame.LensID]
		if !ok {
			var err error
			if lens, err = lenses.NewRepository(r.db).GetLens(*frame.LensID); err != nil {
				return err
			}
			lensCache[*frame.LensID] = lens
		}
		frame.Lens = lens
	}
	filters, err := links.NewRepository(r.db).GetFrameFilters(frame.ID)
	if err != nil {
		return err
	}
	frame.Filters = filters
	return nil
}

func replaceFilterLinks(tx *gorm.DB, frame *entities.Frame) error {
	linkRepo := links.NewRepository(tx)
	if err := linkRepo.DeleteFrameFilterLinks(frame.ID); err != nil {
		return err
	}
	for _, filter := range frame.Filters {
		if err := linkRepo.AddFrameFilterLink(frame.ID, filter.ID); err != nil {
			return err
		}
	}
	return nil
}

// Values maps a frame to its column values for full-row updates.
func Values(frame *entities.Frame) map[string]any {
	return map[string]any{
		schema.ColFrameRollID:           frame.RollID,
		schema.ColFrameCount:            frame.Count,
		schema.ColFrameDate:             frame.Date,
		schema.ColFrameShutter:          frame.Shutter,
		schema.ColFrameAperture:         frame.Aperture,
		schema.ColFrameLensID:           frame.LensID,
		schema.ColFrameNote:             frame.Note,
		schema.ColFrameFocalLength:      frame.FocalLength,
		schema.ColFrameExposureComp:     frame.ExposureComp,
		schema.ColFrameNoOfExposures:    frame.NoOfExposures,
		schema.ColFrameFlashUsed:        frame.FlashUsed,
		schema.ColFrameFlashPower:       frame.FlashPower,
		schema.ColFrameFlashComp:        frame.FlashComp,
		schema.ColFrameMeteringMode:     frame.MeteringMode,
		schema.ColFrameLatitude:         frame.Latitude,
		schema.ColFrameLongitude:        frame.Longitude,
		schema.ColFrameFormattedAddress: frame.FormattedAddress,
		schema.ColFramePictureFilename:  frame.PictureFilename,
		schema.ColFrameLightSource:      frame.LightSource,
	}
}

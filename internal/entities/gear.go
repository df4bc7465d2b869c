package entities

import (
	"strings"

	"gorm.io/datatypes"

	"github.com/exifnotes/logbook/internal/database/schema"
)

// Increment is the step between selectable shutter, aperture or exposure
// compensation values.
type Increment string

const (
	IncrementThird Increment = "third"
	IncrementHalf  Increment = "half"
	IncrementFull  Increment = "full"
)

// Valid reports whether i is one of the known increments.
func (i Increment) Valid() bool {
	switch i {
	case IncrementThird, IncrementHalf, IncrementFull:
		return true
	}
	return false
}

// Format is the film format a camera takes and a roll is shot on.
type Format string

const (
	Format35mm  Format = "mm35"
	Format120   Format = "mm120"
	Format4x5   Format = "in4x5"
	Format8x10  Format = "in8x10"
	Format110   Format = "mm110"
	Format127   Format = "mm127"
	Format16mm  Format = "mm16"
	FormatAPSC  Format = "apsc"
	FormatOther Format = "other"
)

// Formats lists every known format in display order.
var Formats = []Format{
	Format35mm, Format120, Format4x5, Format8x10, Format110, Format127, Format16mm, FormatAPSC, FormatOther,
}

func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Description returns a human-readable format name.
func (f Format) Description() string {
	switch f {
	case Format35mm:
		return "35mm"
	case Format120:
		return "120"
	case Format4x5:
		return "4x5"
	case Format8x10:
		return "8x10"
	case Format110:
		return "110"
	case Format127:
		return "127"
	case Format16mm:
		return "16mm"
	case FormatAPSC:
		return "APS-C"
	default:
		return "Other"
	}
}

type Camera struct {
	ID                     int64     `gorm:"column:camera_id;primaryKey;autoIncrement" json:"id"`
	Make                   string    `gorm:"column:camera_make;not null" json:"make"`
	Model                  string    `gorm:"column:camera_model;not null" json:"model"`
	SerialNumber           string    `gorm:"column:camera_serial_no" json:"serial_number,omitempty"`
	MinShutter             string    `gorm:"column:camera_min_shutter" json:"min_shutter,omitempty"` // fastest, e.g. "1/1000"
	MaxShutter             string    `gorm:"column:camera_max_shutter" json:"max_shutter,omitempty"` // slowest, e.g. "1\"" or "B"
	ShutterIncrements      Increment `gorm:"column:shutter_increments;size:8" json:"shutter_increments"`
	ExposureCompIncrements Increment `gorm:"column:exposure_comp_increments;size:8" json:"exposure_comp_increments"`
	Format                 Format    `gorm:"column:format;size:16" json:"format"`
	LensID                 *int64    `gorm:"column:lens_id;index" json:"-"` // fixed lens, owned by the camera

	Lens    *Lens   `gorm:"-" json:"lens,omitempty"`
	LensIDs []int64 `gorm:"-" json:"lens_ids"` // compatible interchangeable lenses
}

func (Camera) TableName() string {
	return schema.TableCameras
}

func (c Camera) Name() string {
	return joinName(c.Make, c.Model)
}

// IsFixedLens reports whether the camera owns its lens.
func (c Camera) IsFixedLens() bool {
	return c.Lens != nil
}

type Lens struct {
	ID                   int64                      `gorm:"column:lens_id;primaryKey;autoIncrement" json:"id"`
	Make                 string                     `gorm:"column:lens_make" json:"make"`
	Model                string                     `gorm:"column:lens_model" json:"model"`
	SerialNumber         string                     `gorm:"column:lens_serial_no" json:"serial_number,omitempty"`
	MinAperture          string                     `gorm:"column:lens_min_aperture" json:"min_aperture,omitempty"` // smallest opening, e.g. "22"
	MaxAperture          string                     `gorm:"column:lens_max_aperture" json:"max_aperture,omitempty"` // widest opening, e.g. "1.4"
	MinFocalLength       int                        `gorm:"column:lens_min_focal_length" json:"min_focal_length"`
	MaxFocalLength       int                        `gorm:"column:lens_max_focal_length" json:"max_focal_length"`
	ApertureIncrements   Increment                  `gorm:"column:aperture_increments;size:8" json:"aperture_increments"`
	CustomApertureValues datatypes.JSONSlice[string] `gorm:"column:custom_aperture_values;type:json" json:"custom_aperture_values"`

	CameraIDs []int64 `gorm:"-" json:"camera_ids"`
	FilterIDs []int64 `gorm:"-" json:"filter_ids"`
}

func (Lens) TableName() string {
	return schema.TableLenses
}

func (l Lens) Name() string {
	return joinName(l.Make, l.Model)
}

// IsZoom reports whether the lens covers a focal length range.
func (l Lens) IsZoom() bool {
	return l.MaxFocalLength > l.MinFocalLength && l.MinFocalLength > 0
}

type Filter struct {
	ID    int64  `gorm:"column:filter_id;primaryKey;autoIncrement" json:"id"`
	Make  string `gorm:"column:filter_make" json:"make"`
	Model string `gorm:"column:filter_model" json:"model"`

	LensIDs []int64 `gorm:"-" json:"lens_ids"`
}

func (Filter) TableName() string {
	return schema.TableFilters
}

func (f Filter) Name() string {
	return joinName(f.Make, f.Model)
}

func joinName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

package entities

import (
	"time"

	"github.com/exifnotes/logbook/internal/database/schema"
)

type LightSource string

const (
	LightSourceUnknown     LightSource = "unknown"
	LightSourceDaylight    LightSource = "daylight"
	LightSourceSunny       LightSource = "sunny"
	LightSourceCloudy      LightSource = "cloudy"
	LightSourceShade       LightSource = "shade"
	LightSourceFluorescent LightSource = "fluorescent"
	LightSourceTungsten    LightSource = "tungsten"
	LightSourceFlash       LightSource = "flash"
)

type MeteringMode string

const (
	MeteringModeUnknown        MeteringMode = "unknown"
	MeteringModeAverage        MeteringMode = "average"
	MeteringModeCenterWeighted MeteringMode = "center_weighted"
	MeteringModeSpot           MeteringMode = "spot"
	MeteringModeMultiSpot      MeteringMode = "multi_spot"
	MeteringModePattern        MeteringMode = "pattern"
	MeteringModePartial        MeteringMode = "partial"
)

// Roll is a single unit of film loaded into a camera.
type Roll struct {
	ID          int64      `gorm:"column:roll_id;primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"column:rollname;not null" json:"name"`
	Date        time.Time  `gorm:"column:roll_date" json:"date"`
	Unloaded    *time.Time `gorm:"column:roll_unloaded" json:"unloaded,omitempty"`
	Developed   *time.Time `gorm:"column:roll_developed" json:"developed,omitempty"`
	Note        string     `gorm:"column:roll_note" json:"note,omitempty"`
	CameraID    *int64     `gorm:"column:camera_id;index" json:"camera_id,omitempty"`
	ISO         int        `gorm:"column:roll_iso" json:"iso"`
	PushPull    string     `gorm:"column:roll_push" json:"push_pull,omitempty"` // e.g. "+1" or "-1/2"
	Format      Format     `gorm:"column:roll_format;size:16" json:"format"`
	Archived    bool       `gorm:"column:roll_archived;index" json:"archived"`
	Favorite    bool       `gorm:"column:roll_favorite" json:"favorite"`
	FilmStockID *int64     `gorm:"column:film_stock_id;index" json:"film_stock_id,omitempty"`

	Camera     *Camera    `gorm:"-" json:"camera,omitempty"`
	FilmStock  *FilmStock `gorm:"-" json:"film_stock,omitempty"`
	Labels     []Label    `gorm:"-" json:"labels"`
	FrameCount int        `gorm:"-" json:"frame_count"`
}

func (Roll) TableName() string {
	return schema.TableRolls
}

// LabelIDs returns the IDs of the roll's labels in order.
func (r Roll) LabelIDs() []int64 {
	ids := make([]int64, 0, len(r.Labels))
	for _, l := range r.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}

// Frame is a single exposure on a roll.
type Frame struct {
	ID               int64        `gorm:"column:frame_id;primaryKey;autoIncrement" json:"id"`
	RollID           int64        `gorm:"column:roll_id;index;not null" json:"roll_id"`
	Count            int          `gorm:"column:count" json:"count"`
	Date             time.Time    `gorm:"column:date" json:"date"`
	Shutter          string       `gorm:"column:shutter" json:"shutter,omitempty"`
	Aperture         string       `gorm:"column:aperture" json:"aperture,omitempty"`
	LensID           *int64       `gorm:"column:lens_id;index" json:"lens_id,omitempty"`
	Note             string       `gorm:"column:frame_note" json:"note,omitempty"`
	FocalLength      int          `gorm:"column:focal_length" json:"focal_length,omitempty"`
	ExposureComp     string       `gorm:"column:exposure_comp" json:"exposure_comp,omitempty"`
	NoOfExposures    int          `gorm:"column:no_of_exposures" json:"no_of_exposures"`
	FlashUsed        bool         `gorm:"column:flash_used" json:"flash_used"`
	FlashPower       string       `gorm:"column:flash_power" json:"flash_power,omitempty"`
	FlashComp        string       `gorm:"column:flash_comp" json:"flash_comp,omitempty"`
	MeteringMode     MeteringMode `gorm:"column:metering_mode;size:16" json:"metering_mode,omitempty"`
	Latitude         *float64     `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude        *float64     `gorm:"column:longitude" json:"longitude,omitempty"`
	FormattedAddress string       `gorm:"column:formatted_address" json:"formatted_address,omitempty"`
	PictureFilename  string       `gorm:"column:picture_filename" json:"picture_filename,omitempty"`
	LightSource      LightSource  `gorm:"column:light_source;size:16" json:"light_source,omitempty"`

	Lens    *Lens    `gorm:"-" json:"lens,omitempty"`
	Filters []Filter `gorm:"-" json:"filters"`
}

func (Frame) TableName() string {
	return schema.TableFrames
}

// HasLocation reports whether both coordinates are set.
func (f Frame) HasLocation() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// FilterIDs returns the IDs of the frame's filters in order.
func (f Frame) FilterIDs() []int64 {
	ids := make([]int64, 0, len(f.Filters))
	for _, filter := range f.Filters {
		ids = append(ids, filter.ID)
	}
	return ids
}

type Label struct {
	ID   int64  `gorm:"column:label_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:label_name;not null" json:"name"`

	RollCount int `gorm:"-" json:"roll_count"` // derived from link_roll_label
}

func (Label) TableName() string {
	return schema.TableLabels
}

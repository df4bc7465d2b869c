package entities

import "github.com/exifnotes/logbook/internal/database/schema"

// Link tables are plain structs so AutoMigrate creates them with a composite
// primary key. Rows are written through the links repository only.

type CameraLensLink struct {
	CameraID int64 `gorm:"column:camera_id;primaryKey;autoIncrement:false"`
	LensID   int64 `gorm:"column:lens_id;primaryKey;autoIncrement:false"`
}

func (CameraLensLink) TableName() string { return schema.TableCameraLens }

type LensFilterLink struct {
	LensID   int64 `gorm:"column:lens_id;primaryKey;autoIncrement:false"`
	FilterID int64 `gorm:"column:filter_id;primaryKey;autoIncrement:false"`
}

func (LensFilterLink) TableName() string { return schema.TableLensFilter }

type FrameFilterLink struct {
	FrameID  int64 `gorm:"column:frame_id;primaryKey;autoIncrement:false"`
	FilterID int64 `gorm:"column:filter_id;primaryKey;autoIncrement:false"`
}

func (FrameFilterLink) TableName() string { return schema.TableFrameFilter }

type RollLabelLink struct {
	RollID  int64 `gorm:"column:roll_id;primaryKey;autoIncrement:false"`
	LabelID int64 `gorm:"column:label_id;primaryKey;autoIncrement:false"`
}

func (RollLabelLink) TableName() string { return schema.TableRollLabel }

// All returns every model that AutoMigrate must know about.
func All() []any {
	return []any{
		&Camera{}, &Lens{}, &Filter{}, &FilmStock{}, &Roll{}, &Frame{}, &Label{},
		&CameraLensLink{}, &LensFilterLink{}, &FrameFilterLink{}, &RollLabelLink{},
		&Setting{},
	}
}

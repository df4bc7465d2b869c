package entities

import "github.com/exifnotes/logbook/internal/database/schema"

type FilmType string

const (
	FilmTypeUnknown                    FilmType = "unknown"
	FilmTypeBWNegative                 FilmType = "bw_negative"
	FilmTypeBWReversal                 FilmType = "bw_reversal"
	FilmTypeColorNegative              FilmType = "color_negative"
	FilmTypeColorReversal              FilmType = "color_reversal"
	FilmTypeChromogenicBW              FilmType = "chromogenic_bw"
	FilmTypeInstant                    FilmType = "instant"
	FilmTypeMotionPictureColorNegative FilmType = "motion_picture_color_negative"
)

var FilmTypes = []FilmType{
	FilmTypeUnknown, FilmTypeBWNegative, FilmTypeBWReversal, FilmTypeColorNegative,
	FilmTypeColorReversal, FilmTypeChromogenicBW, FilmTypeInstant, FilmTypeMotionPictureColorNegative,
}

type FilmProcess string

const (
	FilmProcessUnknown    FilmProcess = "unknown"
	FilmProcessBWNegative FilmProcess = "bw_negative"
	FilmProcessBWReversal FilmProcess = "bw_reversal"
	FilmProcessC41        FilmProcess = "c41"
	FilmProcessE6         FilmProcess = "e6"
	FilmProcessECN2       FilmProcess = "ecn2"
	FilmProcessInstant    FilmProcess = "instant"
)

var FilmProcesses = []FilmProcess{
	FilmProcessUnknown, FilmProcessBWNegative, FilmProcessBWReversal, FilmProcessC41,
	FilmProcessE6, FilmProcessECN2, FilmProcessInstant,
}

type FilmStock struct {
	ID       int64       `gorm:"column:film_stock_id;primaryKey;autoIncrement" json:"id"`
	Make     string      `gorm:"column:film_manufacturer_name;index" json:"make"`
	Model    string      `gorm:"column:film_stock_name" json:"model"`
	ISO      int         `gorm:"column:film_iso" json:"iso"`
	Type     FilmType    `gorm:"column:film_type;size:32" json:"type"`
	Process  FilmProcess `gorm:"column:film_process;size:16" json:"process"`
	Preadded bool        `gorm:"column:film_is_preadded" json:"preadded"` // bundled with the application
}

func (FilmStock) TableName() string {
	return schema.TableFilmStocks
}

func (s FilmStock) Name() string {
	return joinName(s.Make, s.Model)
}

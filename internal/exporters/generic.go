package exporters

import (
	"fmt"
	"io"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/utils"
)

// RollData is a roll with its hydrated frames, ready for export.
type RollData struct {
	Roll   entities.Roll
	Frames []entities.Frame
}

type RollExporter interface {
	Export(w io.Writer, data RollData) (ExportResult, error)
	// Suffix and Extension name the exported file.
	Suffix() string
	Extension() string
}

type ExportResult struct {
	FramesProcessed int `json:"frames_processed"`
	FramesSkipped   int `json:"frames_skipped"`
}

// Format identifies one of the roll export formats.
type Format string

const (
	FormatExifTool Format = "exiftool"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

var Formats = []Format{FormatExifTool, FormatCSV, FormatJSON}

// ForFormat returns the exporter for a format. opts is only used by the
// ExifTool exporter.
func ForFormat(format Format, opts ExifToolOptions) (RollExporter, error) {
	switch format {
	case FormatExifTool:
		return NewExifToolExporter(opts), nil
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatJSON:
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Filename returns the file name an export of the roll is saved under.
func Filename(exporter RollExporter, roll entities.Roll) string {
	return utils.RollFilename(roll.Name, roll.Date, exporter.Suffix(), exporter.Extension())
}

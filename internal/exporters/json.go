package exporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/exifnotes/logbook/internal/entities"
)

type jsonRoll struct {
	entities.Roll
	Frames []entities.Frame `json:"frames"`
}

// JSONExporter writes the roll with its gear and frames as one document.
type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Suffix() string    { return "" }
func (e *JSONExporter) Extension() string { return ".json" }

func (e *JSONExporter) Export(w io.Writer, data RollData) (ExportResult, error) {
	frames := data.Frames
	if frames == nil {
		frames = []entities.Frame{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonRoll{Roll: data.Roll, Frames: frames}); err != nil {
		return ExportResult{}, fmt.Errorf("encode roll: %w", err)
	}
	return ExportResult{FramesProcessed: len(frames)}, nil
}

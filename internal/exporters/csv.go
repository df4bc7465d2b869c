package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/exifnotes/logbook/internal/entities"
)

const csvDateLayout = "2006-01-02 15:04"

var csvHeader = []string{
	"Frame Count", "Date", "Lens", "Lens serial number", "Shutter", "Aperture", "Focal length",
	"Exposure compensation", "Notes", "No of exposures", "Filters", "Latitude", "Longitude",
	"Address", "Flash", "Light source", "Metering mode",
}

// CSVExporter writes a roll preamble followed by one row per frame.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Suffix() string    { return "csv" }
func (e *CSVExporter) Extension() string { return ".txt" }

func (e *CSVExporter) Export(w io.Writer, data RollData) (ExportResult, error) {
	var result ExportResult
	cw := csv.NewWriter(w)
	for _, record := range rollPreamble(data.Roll) {
		if err := cw.Write(record); err != nil {
			return result, fmt.Errorf("write csv preamble: %w", err)
		}
	}
	if err := cw.Write(csvHeader); err != nil {
		return result, fmt.Errorf("write csv header: %w", err)
	}
	for _, frame := range data.Frames {
		if err := cw.Write(frameRecord(data.Roll, frame)); err != nil {
			return result, fmt.Errorf("write frame %d: %w", frame.Count, err)
		}
		result.FramesProcessed++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return result, fmt.Errorf("flush csv: %w", err)
	}
	return result, nil
}

func rollPreamble(roll entities.Roll) [][]string {
	rows := [][]string{
		{"Roll name:", roll.Name},
		{"Loaded on:", formatDate(roll.Date)},
		{"Unloaded on:", formatDatePtr(roll.Unloaded)},
		{"Developed on:", formatDatePtr(roll.Developed)},
	}
	if roll.FilmStock != nil {
		rows = append(rows, []string{"Film stock:", roll.FilmStock.Name()})
	}
	rows = append(rows,
		[]string{"ISO:", strconv.Itoa(roll.ISO)},
		[]string{"Format:", roll.Format.Description()},
		[]string{"Push/pull:", roll.PushPull},
	)
	if roll.Camera != nil {
		rows = append(rows,
			[]string{"Camera:", roll.Camera.Name()},
			[]string{"Serial number:", roll.Camera.SerialNumber},
		)
	}
	if len(roll.Labels) > 0 {
		names := make([]string, 0, len(roll.Labels))
		for _, l := range roll.Labels {
			names = append(names, l.Name)
		}
		rows = append(rows, []string{"Labels:", strings.Join(names, "; ")})
	}
	return append(rows, []string{"Notes:", roll.Note})
}

func frameRecord(roll entities.Roll, frame entities.Frame) []string {
	var lensName, lensSerial string
	lens := frame.Lens
	if lens == nil && roll.Camera != nil {
		lens = roll.Camera.Lens
	}
	if lens != nil {
		lensName, lensSerial = lens.Name(), lens.SerialNumber
	}

	filters := make([]string, 0, len(frame.Filters))
	for _, f := range frame.Filters {
		filters = append(filters, f.Name())
	}

	var lat, lng string
	if frame.HasLocation() {
		lat = strconv.FormatFloat(*frame.Latitude, 'f', 6, 64)
		lng = strconv.FormatFloat(*frame.Longitude, 'f', 6, 64)
	}

	var focal string
	if frame.FocalLength > 0 {
		focal = strconv.Itoa(frame.FocalLength)
	}

	return []string{
		strconv.Itoa(frame.Count),
		formatDate(frame.Date),
		lensName,
		lensSerial,
		frame.Shutter,
		frame.Aperture,
		focal,
		frame.ExposureComp,
		frame.Note,
		strconv.Itoa(frame.NoOfExposures),
		strings.Join(filters, "; "),
		lat,
		lng,
		frame.FormattedAddress,
		strconv.FormatBool(frame.FlashUsed),
		lightSourceTag(frame.LightSource),
		meteringModeTag(frame.MeteringMode),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(csvDateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

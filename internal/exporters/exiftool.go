package exporters

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/zsefvlol/timezonemapper"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/exposure"
)

const (
	DefaultExifToolPath = "exiftool"
	DefaultFileEnding   = ".jpg"
	exifDateLayout      = "2006:01:02 15:04:05"
)

// ExifToolOptions configure the generated command lines.
type ExifToolOptions struct {
	ExifToolPath   string
	PicturesPath   string // directory holding the scanned pictures
	FileEnding     string
	IgnoreWarnings bool
	Artist         string
	Copyright      string
}

// ExifToolExporter writes one ExifTool command per frame. Each command
// targets the pictures matching "*_<count><ending>".
type ExifToolExporter struct {
	opts ExifToolOptions
}

func NewExifToolExporter(opts ExifToolOptions) *ExifToolExporter {
	if opts.ExifToolPath == "" {
		opts.ExifToolPath = DefaultExifToolPath
	}
	if opts.FileEnding == "" {
		opts.FileEnding = DefaultFileEnding
	}
	if !strings.HasPrefix(opts.FileEnding, ".") {
		opts.FileEnding = "." + opts.FileEnding
	}
	if p := opts.PicturesPath; p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, `\`) {
		opts.PicturesPath = p + "/"
	}
	return &ExifToolExporter{opts: opts}
}

func (e *ExifToolExporter) Suffix() string    { return "exiftool" }
func (e *ExifToolExporter) Extension() string { return ".txt" }

func (e *ExifToolExporter) Export(w io.Writer, data RollData) (ExportResult, error) {
	var result ExportResult
	for _, frame := range data.Frames {
		if _, err := io.WriteString(w, e.Command(data.Roll, frame)+"\n"); err != nil {
			return result, fmt.Errorf("write exiftool command: %w", err)
		}
		result.FramesProcessed++
	}
	return result, nil
}

type command struct {
	strings.Builder
}

func (c *command) tag(name, value string) {
	if value == "" {
		return
	}
	c.WriteString(" -")
	c.WriteString(name)
	c.WriteString("=")
	c.WriteString(quote(value))
}

// shellEscaper escapes the characters a POSIX shell still expands inside
// double quotes.
var shellEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

func quote(s string) string {
	return `"` + shellEscaper.Replace(s) + `"`
}

// Command returns the ExifTool invocation for a single frame.
func (e *ExifToolExporter) Command(roll entities.Roll, frame entities.Frame) string {
	var c command
	c.WriteString(quote(e.opts.ExifToolPath))
	if e.opts.IgnoreWarnings {
		c.WriteString(" -m")
	}

	if cam := roll.Camera; cam != nil {
		c.tag("Make", cam.Make)
		c.tag("Model", cam.Model)
		c.tag("SerialNumber", cam.SerialNumber)
	}
	lens := frame.Lens
	if lens == nil && roll.Camera != nil {
		lens = roll.Camera.Lens
	}
	if lens != nil {
		c.tag("LensMake", lens.Make)
		c.tag("LensModel", lens.Model)
		c.tag("Lens", lens.Name())
		c.tag("LensSerialNumber", lens.SerialNumber)
	}

	c.tag("ExposureTime", exposureTime(frame.Shutter))
	if f, err := exposure.ApertureValue(frame.Aperture); err == nil {
		c.tag("FNumber", formatFloat(f, 1))
	}
	if roll.ISO > 0 {
		c.tag("ISO", strconv.Itoa(roll.ISO))
	}
	if frame.FocalLength > 0 {
		c.tag("FocalLength", strconv.Itoa(frame.FocalLength))
	}
	if comp, err := exposure.ExposureCompValue(frame.ExposureComp); err == nil {
		c.tag("ExposureCompensation", formatFloat(comp, 2))
	}

	if !frame.Date.IsZero() {
		c.tag("DateTimeOriginal", frame.Date.Format(exifDateLayout))
	}
	if frame.HasLocation() {
		lat, lng := *frame.Latitude, *frame.Longitude
		if !frame.Date.IsZero() {
			c.tag("OffsetTimeOriginal", utcOffset(frame.Date, lat, lng))
		}
		c.tag("GPSLatitude", DegreesMinutesSeconds(lat))
		c.tag("GPSLatitudeRef", latitudeRef(lat))
		c.tag("GPSLongitude", DegreesMinutesSeconds(lng))
		c.tag("GPSLongitudeRef", longitudeRef(lng))
	}

	c.tag("UserComment", frame.Note)
	c.tag("ImageDescription", frame.Note)
	c.tag("Artist", e.opts.Artist)
	c.tag("Copyright", e.opts.Copyright)
	if frame.FlashUsed {
		c.tag("Flash", "Fired")
	} else {
		c.tag("Flash", "No Flash")
	}
	c.tag("LightSource", lightSourceTag(frame.LightSource))
	c.tag("MeteringMode", meteringModeTag(frame.MeteringMode))

	c.WriteString(" ")
	c.WriteString(quote(e.opts.PicturesPath + "*_" + strconv.Itoa(frame.Count) + e.opts.FileEnding))
	return c.String()
}

// exposureTime converts a shutter value to seconds as ExifTool expects.
// Bulb has no fixed time and is left out.
func exposureTime(shutter string) string {
	seconds, err := exposure.ShutterSeconds(shutter)
	if err != nil || math.IsInf(seconds, 1) {
		return ""
	}
	if strings.Contains(shutter, "/") {
		return strings.TrimSpace(shutter)
	}
	return formatFloat(seconds, 3)
}

func formatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// DegreesMinutesSeconds formats the absolute value of a decimal coordinate
// as "deg min sec" with seconds rounded to two decimals.
func DegreesMinutesSeconds(coord float64) string {
	a := math.Abs(coord)
	deg := math.Floor(a)
	minutes := (a - deg) * 60
	mins := math.Floor(minutes)
	sec := math.Round((minutes-mins)*60*100) / 100
	if sec >= 60 {
		sec -= 60
		mins++
	}
	if mins >= 60 {
		mins -= 60
		deg++
	}
	return fmt.Sprintf("%d %d %s", int(deg), int(mins), formatFloat(sec, 2))
}

func latitudeRef(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

func longitudeRef(lng float64) string {
	if lng < 0 {
		return "W"
	}
	return "E"
}

// utcOffset returns the offset, like "+01:00", of the time zone at the
// coordinates for the frame's wall clock time.
func utcOffset(wall time.Time, lat, lng float64) string {
	name := timezonemapper.LatLngToTimezoneString(lat, lng)
	if name == "" {
		return ""
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return ""
	}
	local := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, zone)
	return local.Format("-07:00")
}

func lightSourceTag(ls entities.LightSource) string {
	switch ls {
	case entities.LightSourceDaylight:
		return "Daylight"
	case entities.LightSourceSunny:
		return "Fine Weather"
	case entities.LightSourceCloudy:
		return "Cloudy"
	case entities.LightSourceShade:
		return "Shade"
	case entities.LightSourceFluorescent:
		return "Fluorescent"
	case entities.LightSourceTungsten:
		return "Tungsten (Incandescent)"
	case entities.LightSourceFlash:
		return "Flash"
	default:
		return ""
	}
}

func meteringModeTag(mode entities.MeteringMode) string {
	switch mode {
	case entities.MeteringModeAverage:
		return "Average"
	case entities.MeteringModeCenterWeighted:
		return "Center-weighted average"
	case entities.MeteringModeSpot:
		return "Spot"
	case entities.MeteringModeMultiSpot:
		return "Multi-spot"
	case entities.MeteringModePattern:
		return "Multi-segment"
	case entities.MeteringModePartial:
		return "Partial"
	default:
		return ""
	}
}

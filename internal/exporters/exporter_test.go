package exporters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/entities"
)

func ptr[T any](v T) *T { return &v }

func testRoll() RollData {
	lens := &entities.Lens{ID: 2, Make: "Canon", Model: "FD 50mm f/1.4", SerialNumber: "L123"}
	return RollData{
		Roll: entities.Roll{
			ID:     1,
			Name:   "Lisbon walks",
			Date:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			ISO:    400,
			Format: entities.Format35mm,
			Camera: &entities.Camera{ID: 1, Make: "Canon", Model: "A-1", SerialNumber: "C999"},
			FilmStock: &entities.FilmStock{
				ID: 3, Make: "Kodak", Model: "Portra 400", ISO: 400,
			},
			Labels: []entities.Label{{ID: 1, Name: "travel"}, {ID: 2, Name: "street"}},
			Note:   `shot "wide open"`,
		},
		Frames: []entities.Frame{
			{
				ID:            10,
				Count:         1,
				Date:          time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
				Shutter:       "1/125",
				Aperture:      "5.6",
				LensID:        ptr(int64(2)),
				Lens:          lens,
				FocalLength:   50,
				ExposureComp:  "+1 1/3",
				NoOfExposures: 1,
				Latitude:      ptr(38.7107),
				Longitude:     ptr(-9.1365),
				Note:          `tram "28"`,
				LightSource:   entities.LightSourceSunny,
				MeteringMode:  entities.MeteringModeCenterWeighted,
				Filters:       []entities.Filter{{ID: 1, Make: "Hoya", Model: "Yellow"}},
			},
			{
				ID:            11,
				Count:         2,
				Date:          time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
				Shutter:       "B",
				Aperture:      "16",
				NoOfExposures: 1,
				FlashUsed:     true,
			},
		},
	}
}

// --- ExifTool ---

func TestExifToolCommand(t *testing.T) {
	data := testRoll()
	exporter := NewExifToolExporter(ExifToolOptions{
		PicturesPath:   "/scans/lisbon",
		IgnoreWarnings: true,
		Artist:         "Jane Doe",
		Copyright:      "CC BY 4.0",
	})

	cmd := exporter.Command(data.Roll, data.Frames[0])

	assert.True(t, strings.HasPrefix(cmd, `"exiftool" -m `))
	assert.True(t, strings.HasSuffix(cmd, ` "/scans/lisbon/*_1.jpg"`))
	for _, want := range []string{
		`-Make="Canon"`,
		`-Model="A-1"`,
		`-SerialNumber="C999"`,
		`-LensMake="Canon"`,
		`-LensModel="FD 50mm f/1.4"`,
		`-Lens="Canon FD 50mm f/1.4"`,
		`-LensSerialNumber="L123"`,
		`-ExposureTime="1/125"`,
		`-FNumber="5.6"`,
		`-ISO="400"`,
		`-FocalLength="50"`,
		`-ExposureCompensation="1.33"`,
		`-DateTimeOriginal="2024:05:01 14:30:00"`,
		`-OffsetTimeOriginal="+01:00"`,
		`-GPSLatitude="38 42 38.52"`,
		`-GPSLatitudeRef="N"`,
		`-GPSLongitude="9 8 11.4"`,
		`-GPSLongitudeRef="W"`,
		`-UserComment="tram \"28\""`,
		`-ImageDescription="tram \"28\""`,
		`-Artist="Jane Doe"`,
		`-Copyright="CC BY 4.0"`,
		`-Flash="No Flash"`,
		`-LightSource="Fine Weather"`,
		`-MeteringMode="Center-weighted average"`,
	} {
		assert.Contains(t, cmd, want)
	}
}

func TestExifToolCommand_BulbAndMissingValues(t *testing.T) {
	data := testRoll()
	data.Roll.Camera = nil
	exporter := NewExifToolExporter(ExifToolOptions{FileEnding: "tif"})

	cmd := exporter.Command(data.Roll, data.Frames[1])

	assert.NotContains(t, cmd, "-ExposureTime")
	assert.NotContains(t, cmd, "-Make")
	assert.NotContains(t, cmd, "-GPSLatitude")
	assert.NotContains(t, cmd, "-Artist")
	assert.NotContains(t, cmd, " -m ")
	assert.Contains(t, cmd, `-FNumber="16"`)
	assert.Contains(t, cmd, `-Flash="Fired"`)
	assert.True(t, strings.HasSuffix(cmd, ` "*_2.tif"`))
}

func TestExifToolCommand_UsesFixedLens(t *testing.T) {
	data := testRoll()
	data.Roll.Camera.Lens = &entities.Lens{Make: "Olympus", Model: "Zuiko 35mm"}

	cmd := NewExifToolExporter(ExifToolOptions{}).Command(data.Roll, data.Frames[1])

	assert.Contains(t, cmd, `-Lens="Olympus Zuiko 35mm"`)
}

func TestExifToolCommand_EscapesShellExpansion(t *testing.T) {
	data := testRoll()
	data.Frames[0].Note = "$(touch pwned) `id` C:\\scans \"x\""

	cmd := NewExifToolExporter(ExifToolOptions{}).Command(data.Roll, data.Frames[0])

	assert.Contains(t, cmd, `-UserComment="\$(touch pwned) \`+"`"+`id\`+"`"+` C:\\scans \"x\""`)
	assert.NotContains(t, cmd, `="$(`)
}

func TestExifToolExport(t *testing.T) {
	var buf bytes.Buffer
	result, err := NewExifToolExporter(ExifToolOptions{}).Export(&buf, testRoll())
	require.NoError(t, err)
	assert.Equal(t, 2, result.FramesProcessed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"*_1.jpg"`)
	assert.Contains(t, lines[1], `"*_2.jpg"`)
}

func TestDegreesMinutesSeconds(t *testing.T) {
	tests := []struct {
		coord float64
		want  string
	}{
		{38.7107, "38 42 38.52"},
		{-9.1365, "9 8 11.4"},
		{0, "0 0 0"},
		{10.5, "10 30 0"},
		// rounding the seconds carries into minutes and degrees
		{10.9999999, "11 0 0"},
		{-33.8568, "33 51 24.48"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DegreesMinutesSeconds(tt.coord), "coord %v", tt.coord)
	}
}

func TestExposureTime(t *testing.T) {
	assert.Equal(t, "1/1000", exposureTime("1/1000"))
	assert.Equal(t, "30", exposureTime(`30"`))
	assert.Equal(t, "0.5", exposureTime("0.5"))
	assert.Equal(t, "", exposureTime("B"))
	assert.Equal(t, "", exposureTime(""))
}

func TestUTCOffset(t *testing.T) {
	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "+00:00", utcOffset(winter, 38.7107, -9.1365))
	assert.Equal(t, "+01:00", utcOffset(summer, 38.7107, -9.1365))
	assert.Equal(t, "+09:00", utcOffset(summer, 35.6762, 139.6503))
}

// --- CSV ---

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	result, err := NewCSVExporter().Export(&buf, testRoll())
	require.NoError(t, err)
	assert.Equal(t, 2, result.FramesProcessed)

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	preamble := map[string]string{}
	headerAt := -1
	for i, rec := range records {
		if rec[0] == "Frame Count" {
			headerAt = i
			break
		}
		preamble[rec[0]] = rec[1]
	}
	require.NotEqual(t, -1, headerAt)
	assert.Equal(t, "Lisbon walks", preamble["Roll name:"])
	assert.Equal(t, "2024-05-01 09:00", preamble["Loaded on:"])
	assert.Equal(t, "Kodak Portra 400", preamble["Film stock:"])
	assert.Equal(t, "Canon A-1", preamble["Camera:"])
	assert.Equal(t, "35mm", preamble["Format:"])
	assert.Equal(t, "travel; street", preamble["Labels:"])
	assert.Equal(t, `shot "wide open"`, preamble["Notes:"])

	assert.Equal(t, csvHeader, records[headerAt])
	rows := records[headerAt+1:]
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "Canon FD 50mm f/1.4", rows[0][2])
	assert.Equal(t, "1/125", rows[0][4])
	assert.Equal(t, "Hoya Yellow", rows[0][10])
	assert.Equal(t, "38.710700", rows[0][11])
	assert.Equal(t, "Fine Weather", rows[0][15])
	assert.Equal(t, "B", rows[1][4])
	assert.Equal(t, "true", rows[1][14])
	assert.Empty(t, rows[1][11])
}

// --- JSON ---

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	result, err := NewJSONExporter().Export(&buf, testRoll())
	require.NoError(t, err)
	assert.Equal(t, 2, result.FramesProcessed)

	var decoded struct {
		Name   string `json:"name"`
		ISO    int    `json:"iso"`
		Camera struct {
			Model string `json:"model"`
		} `json:"camera"`
		Frames []entities.Frame `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Lisbon walks", decoded.Name)
	assert.Equal(t, 400, decoded.ISO)
	assert.Equal(t, "A-1", decoded.Camera.Model)
	require.Len(t, decoded.Frames, 2)
	assert.Equal(t, "Canon", decoded.Frames[0].Lens.Make)
}

func TestJSONExport_NoFrames(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewJSONExporter().Export(&buf, RollData{Roll: entities.Roll{Name: "empty"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"frames": []`)
}

// --- Formats and file names ---

func TestForFormat(t *testing.T) {
	roll := testRoll().Roll
	want := map[Format]string{
		FormatExifTool: "2024-05-01-lisbon-walks_exiftool.txt",
		FormatCSV:      "2024-05-01-lisbon-walks_csv.txt",
		FormatJSON:     "2024-05-01-lisbon-walks.json",
	}
	for _, format := range Formats {
		exporter, err := ForFormat(format, ExifToolOptions{})
		require.NoError(t, err)
		assert.Equal(t, want[format], Filename(exporter, roll))
	}

	_, err := ForFormat("xml", ExifToolOptions{})
	assert.Error(t, err)
}

package http

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/exporters"
	"github.com/exifnotes/logbook/internal/pictures"
	"github.com/exifnotes/logbook/internal/services"
)

type testAPI struct {
	router *gin.Engine
	db     *database.Database
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := pictures.NewDiskStore(filepath.Join(dir, "pictures"))
	require.NoError(t, err)

	gear := services.NewGearService(db.DB, nil)
	stocks := services.NewFilmStockService(db.DB, nil)
	frames := services.NewFrameService(db.DB, nil, store, nil)
	rolls := services.NewRollService(db.DB, store, nil)
	pics := services.NewPictureService(db.DB, store, frames, services.PictureConfig{MaxSize: 64, Quality: 70}, nil)
	require.NoError(t, gear.Load())
	require.NoError(t, stocks.Load())
	require.NoError(t, rolls.Load())

	router, err := NewRouter(RouterConfig{
		Database:   db,
		Gear:       gear,
		FilmStocks: stocks,
		Rolls:      rolls,
		Frames:     frames,
		Pictures:   pics,
		ExifTool:   exporters.ExifToolOptions{PicturesPath: "/scans"},
		Version:    "test",
	})
	require.NoError(t, err)
	return &testAPI{router: router, db: db}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// create posts body and returns the ID of the created entity.
func (a *testAPI) create(t *testing.T, path string, body any) int64 {
	t.Helper()
	w := a.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	return created.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func idPath(format string, id int64) string {
	return format + "/" + strconv.FormatInt(id, 10)
}

type valuesResponse struct {
	Values []string `json:"values"`
}

func TestGearAPI(t *testing.T) {
	api := newTestAPI(t)

	cameraID := api.create(t, "/api/cameras", map[string]any{
		"make":                     "Nikon",
		"model":                    "FM2",
		"min_shutter":              "1/1000",
		"max_shutter":              "1/60",
		"shutter_increments":       "full",
		"exposure_comp_increments": "third",
		"format":                   "mm35",
	})
	lensID := api.create(t, "/api/lenses", map[string]any{
		"make":                "Nikon",
		"model":               "Nikkor 50mm",
		"min_aperture":        "16",
		"max_aperture":        "2.0",
		"aperture_increments": "full",
		"min_focal_length":    50,
		"max_focal_length":    50,
	})
	filterID := api.create(t, "/api/filters", map[string]any{"make": "Hoya", "model": "Yellow"})

	t.Run("shutter values", func(t *testing.T) {
		w := api.do(t, http.MethodGet, idPath("/api/cameras", cameraID)+"/shutter-values", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"1/1000", "1/500", "1/250", "1/125", "1/60"}, decode[valuesResponse](t, w).Values)
	})

	t.Run("exposure compensation values", func(t *testing.T) {
		w := api.do(t, http.MethodGet, idPath("/api/cameras", cameraID)+"/exposure-comp-values", nil)
		require.Equal(t, http.StatusOK, w.Code)
		values := decode[valuesResponse](t, w).Values
		assert.Len(t, values, 19)
		assert.Equal(t, "-3", values[0])
		assert.Contains(t, values, "+1 1/3")
	})

	t.Run("aperture values", func(t *testing.T) {
		w := api.do(t, http.MethodGet, idPath("/api/lenses", lensID)+"/aperture-values", nil)
		require.Equal(t, http.StatusOK, w.Code)
		values := decode[valuesResponse](t, w).Values
		require.NotEmpty(t, values)
		assert.Equal(t, "2.0", values[0])
		assert.Equal(t, "16", values[len(values)-1])
	})

	t.Run("links", func(t *testing.T) {
		w := api.do(t, http.MethodPut, idPath("/api/cameras", cameraID)+"/lenses", IDsRequest{IDs: []int64{lensID}})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = api.do(t, http.MethodPut, idPath("/api/lenses", lensID)+"/filters", IDsRequest{IDs: []int64{filterID}})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("snapshot", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/gear", nil)
		require.Equal(t, http.StatusOK, w.Code)
		snapshot := decode[services.GearSnapshot](t, w)
		assert.Len(t, snapshot.Cameras, 1)
		assert.Len(t, snapshot.Lenses, 1)
		assert.Len(t, snapshot.Filters, 1)
	})

	t.Run("update", func(t *testing.T) {
		w := api.do(t, http.MethodPut, idPath("/api/filters", filterID), map[string]any{"make": "Hoya", "model": "Orange"})
		require.Equal(t, http.StatusOK, w.Code)
		w = api.do(t, http.MethodGet, idPath("/api/filters", filterID), nil)
		assert.Equal(t, "Orange", decode[entities.Filter](t, w).Model)
	})

	t.Run("validation and missing entities", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/cameras", map[string]any{"model": "no make"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_input")

		w = api.do(t, http.MethodGet, "/api/cameras/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = api.do(t, http.MethodGet, "/api/cameras/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = api.do(t, http.MethodPut, "/api/filters/999", map[string]any{"make": "Hoya", "model": "Red"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, idPath("/api/cameras", cameraID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = api.do(t, http.MethodGet, idPath("/api/cameras", cameraID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFilmStockAPI(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/film-stocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[services.FilmStockSnapshot](t, w).FilmStocks)

	w = api.do(t, http.MethodPut, "/api/film-stocks/view", map[string]any{"sort_mode": "iso"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "iso", string(decode[services.FilmStockSnapshot](t, w).SortMode))

	w = api.do(t, http.MethodPut, "/api/film-stocks/view", map[string]any{"sort_mode": "date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := api.create(t, "/api/film-stocks", map[string]any{"make": "Homebrew", "model": "Test 100", "iso": 100})
	w = api.do(t, http.MethodGet, idPath("/api/film-stocks", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	stock := decode[entities.FilmStock](t, w)
	assert.False(t, stock.Preadded)
	assert.Equal(t, entities.FilmTypeUnknown, stock.Type)

	w = api.do(t, http.MethodPut, "/api/film-stocks/view", map[string]any{
		"filter": map[string]any{"manufacturers": []string{"Homebrew"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[services.FilmStockSnapshot](t, w).FilmStocks, 1)

	w = api.do(t, http.MethodDelete, idPath("/api/film-stocks", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRollsAndFramesAPI(t *testing.T) {
	api := newTestAPI(t)

	cameraID := api.create(t, "/api/cameras", map[string]any{"make": "Leica", "model": "M6"})
	rollID := api.create(t, "/api/rolls", map[string]any{
		"name":      "HP5 walks",
		"date":      "2024-05-01T10:00:00Z",
		"camera_id": cameraID,
		"iso":       400,
		"format":    "mm35",
	})

	t.Run("camera in use", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, idPath("/api/cameras", cameraID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	frameID := api.create(t, idPath("/api/rolls", rollID)+"/frames", map[string]any{
		"count":    1,
		"date":     "2024-05-01T11:00:00Z",
		"shutter":  "1/125",
		"aperture": "8",
	})

	t.Run("next frame defaults", func(t *testing.T) {
		w := api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/frames/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
		next := decode[entities.Frame](t, w)
		assert.Zero(t, next.ID)
		assert.Equal(t, 2, next.Count)
		assert.Equal(t, "1/125", next.Shutter)
		assert.Equal(t, "8", next.Aperture)
	})

	t.Run("update frame keeps roll", func(t *testing.T) {
		w := api.do(t, http.MethodPut, idPath("/api/frames", frameID), map[string]any{
			"roll_id": 9999,
			"count":   1,
			"date":    "2024-05-01T11:00:00Z",
			"shutter": "1/250",
			"note":    "harbour",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = api.do(t, http.MethodGet, idPath("/api/frames", frameID), nil)
		frame := decode[entities.Frame](t, w)
		assert.Equal(t, rollID, frame.RollID)
		assert.Equal(t, "harbour", frame.Note)
	})

	t.Run("list frames", func(t *testing.T) {
		api.create(t, idPath("/api/rolls", rollID)+"/frames", map[string]any{"count": 2, "date": "2024-05-01T12:00:00Z"})

		w := api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/frames?sort=count&reversed=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		snapshot := decode[services.FrameSnapshot](t, w)
		require.Len(t, snapshot.Frames, 2)
		assert.Equal(t, 2, snapshot.Frames[0].Count)
		assert.True(t, snapshot.Reversed)

		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/frames?sort=iso", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("export", func(t *testing.T) {
		w := api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/export/csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "2024-05-01-hp5-walks_csv.txt")
		assert.Contains(t, w.Body.String(), "HP5 walks")

		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/export/json", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var doc struct {
			Name   string           `json:"name"`
			Frames []entities.Frame `json:"frames"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "HP5 walks", doc.Name)
		require.Len(t, doc.Frames, 2)
		assert.Equal(t, 1, doc.Frames[0].Count)

		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/export/exiftool", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/scans/")

		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID)+"/export/xml", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("labels", func(t *testing.T) {
		labelID := api.create(t, "/api/labels", map[string]any{"name": "Street"})
		w := api.do(t, http.MethodPost, "/api/labels", map[string]any{"name": "Street"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = api.do(t, http.MethodPut, idPath("/api/rolls", rollID)+"/labels", IDsRequest{IDs: []int64{labelID}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID), nil)
		roll := decode[entities.Roll](t, w)
		require.Len(t, roll.Labels, 1)
		assert.Equal(t, "Street", roll.Labels[0].Name)

		w = api.do(t, http.MethodPut, idPath("/api/rolls", rollID)+"/labels", IDsRequest{IDs: []int64{999}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("archive and filter", func(t *testing.T) {
		w := api.do(t, http.MethodPut, idPath("/api/rolls", rollID)+"/archived", map[string]any{"value": true})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(t, http.MethodGet, "/api/rolls", nil)
		assert.Empty(t, decode[services.RollSnapshot](t, w).Rolls)

		w = api.do(t, http.MethodPut, "/api/rolls/view", map[string]any{"filter": map[string]any{"mode": "archived"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[services.RollSnapshot](t, w).Rolls, 1)

		w = api.do(t, http.MethodPut, idPath("/api/rolls", rollID)+"/favorite", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, idPath("/api/frames", frameID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = api.do(t, http.MethodDelete, idPath("/api/rolls", rollID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = api.do(t, http.MethodGet, idPath("/api/rolls", rollID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = api.do(t, http.MethodPost, idPath("/api/rolls", rollID)+"/frames", map[string]any{"count": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	for x := 0; x < 120; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (a *testAPI) upload(t *testing.T, frameID int64, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("picture", "scan.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, idPath("/api/frames", frameID)+"/picture", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestPictureAPI(t *testing.T) {
	api := newTestAPI(t)
	rollID := api.create(t, "/api/rolls", map[string]any{"name": "Portra", "date": "2024-06-01T10:00:00Z"})
	frameID := api.create(t, idPath("/api/rolls", rollID)+"/frames", map[string]any{"count": 1, "date": "2024-06-01T10:00:00Z"})

	type pictureResponse struct {
		Name string `json:"picture_filename"`
	}

	w := api.upload(t, frameID, []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.upload(t, frameID, testPNG(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	uploaded := decode[pictureResponse](t, w).Name
	require.NotEmpty(t, uploaded)

	w = api.do(t, http.MethodGet, "/api/pictures/"+uploaded, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	img, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Width)

	w = api.do(t, http.MethodPost, idPath("/api/frames", frameID)+"/picture/rotate", map[string]any{"degrees": 90})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode[pictureResponse](t, w).Name
	assert.NotEqual(t, uploaded, rotated)

	w = api.do(t, http.MethodGet, "/api/pictures/"+uploaded, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/export/pictures.zip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, rotated, zr.File[0].Name)

	w = api.do(t, http.MethodDelete, idPath("/api/frames", frameID)+"/picture", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/api/pictures/"+rotated, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, idPath("/api/frames", frameID)+"/picture/rotate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

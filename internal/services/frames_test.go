package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/sorting"
)

func createRoll(t *testing.T, db *gorm.DB) *entities.Roll {
	t.Helper()
	roll := &entities.Roll{Name: "Test roll", Date: time.Now().UTC()}
	require.NoError(t, db.Create(roll).Error)
	return roll
}

func TestFrameService_SaveFillsAddress(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	geocoder := &fakeGeocoder{address: "Rua Augusta, Lisboa"}
	svc := NewFrameService(db, geocoder, nil, nil)

	lat, lng := 38.7107, -9.1366
	frame := &entities.Frame{RollID: roll.ID, Count: 1, Latitude: &lat, Longitude: &lng}
	require.NoError(t, svc.SaveFrame(context.Background(), frame))
	assert.Equal(t, 1, geocoder.calls)

	got, err := svc.GetFrame(frame.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rua Augusta, Lisboa", got.FormattedAddress)

	// A stored address is kept.
	frame.Note = "second save"
	require.NoError(t, svc.SaveFrame(context.Background(), frame))
	assert.Equal(t, 1, geocoder.calls)
}

func TestFrameService_SaveKeepsPlaceholderOnGeocoderError(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	geocoder := &fakeGeocoder{address: "Address not found", err: errors.New("timeout")}
	svc := NewFrameService(db, geocoder, nil, nil)

	lat, lng := 1.0, 2.0
	frame := &entities.Frame{RollID: roll.ID, Count: 1, Latitude: &lat, Longitude: &lng}
	require.NoError(t, svc.SaveFrame(context.Background(), frame))
	assert.Equal(t, "Address not found", frame.FormattedAddress)
}

func TestFrameService_SaveValidation(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	svc := NewFrameService(db, nil, nil, nil)

	assert.ErrorIs(t, svc.SaveFrame(context.Background(), &entities.Frame{RollID: 999}), ErrNotFound)
	lat := 91.0
	assert.ErrorIs(t, svc.SaveFrame(context.Background(), &entities.Frame{RollID: roll.ID, Latitude: &lat}), ErrInvalidInput)
}

func TestFrameService_SaveRejectsUnknownFilters(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	svc := NewFrameService(db, nil, nil, nil)
	ctx := context.Background()

	frame := &entities.Frame{RollID: roll.ID, Count: 1, Filters: []entities.Filter{{ID: 1}}}
	assert.ErrorIs(t, svc.SaveFrame(ctx, frame), ErrNotFound)

	filter := &entities.Filter{Make: "Hoya", Model: "Yellow K2"}
	require.NoError(t, db.Create(filter).Error)
	frame = &entities.Frame{RollID: roll.ID, Count: 1, Filters: []entities.Filter{*filter}}
	require.NoError(t, svc.SaveFrame(ctx, frame))

	got, err := svc.GetFrame(frame.ID)
	require.NoError(t, err)
	require.Len(t, got.Filters, 1)
	assert.Equal(t, filter.ID, got.Filters[0].ID)
}

func TestFrameService_SortedFrames(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	svc := NewFrameService(db, nil, nil, nil)
	ctx := context.Background()

	for i, aperture := range []string{"8", "2.8", "16"} {
		require.NoError(t, svc.SaveFrame(ctx, &entities.Frame{RollID: roll.ID, Count: i + 1, Aperture: aperture}))
	}

	counts := func() []int {
		snap, err := svc.Frames(roll.ID)
		require.NoError(t, err)
		var out []int
		for _, f := range snap.Frames {
			out = append(out, f.Count)
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, counts())

	require.NoError(t, svc.SetSortMode(sorting.FrameSortFStop, false))
	assert.Equal(t, []int{2, 1, 3}, counts())

	require.NoError(t, svc.SetSortMode(sorting.FrameSortCount, true))
	assert.Equal(t, []int{3, 2, 1}, counts())

	assert.ErrorIs(t, svc.SetSortMode("weight", false), ErrInvalidInput)
}

func TestFrameService_DeleteFrameRemovesPicture(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	pictures := &fakePictures{}
	svc := NewFrameService(db, nil, pictures, nil)
	ctx := context.Background()

	frame := &entities.Frame{RollID: roll.ID, Count: 1}
	require.NoError(t, svc.SaveFrame(ctx, frame))
	require.NoError(t, svc.SetPicture(ctx, frame.ID, "first.jpg"))
	require.NoError(t, svc.SetPicture(ctx, frame.ID, "second.jpg"))
	assert.Equal(t, []string{"first.jpg"}, pictures.deleted)

	require.NoError(t, svc.DeleteFrame(ctx, frame.ID))
	assert.Equal(t, []string{"first.jpg", "second.jpg"}, pictures.deleted)

	snap, err := svc.Frames(roll.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Frames)
	assert.ErrorIs(t, svc.DeleteFrame(ctx, frame.ID), ErrNotFound)
}

func TestFrameService_NextFrameDefaults(t *testing.T) {
	db := setupTestDB(t)
	roll := createRoll(t, db)
	svc := NewFrameService(db, nil, nil, nil)
	fixed := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	first, err := svc.NextFrameDefaults(roll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)
	assert.Equal(t, fixed, first.Date)
	assert.Nil(t, first.LensID)

	lens := entities.Lens{Make: "Leica", Model: "Summicron 35"}
	require.NoError(t, db.Create(&lens).Error)
	filter := entities.Filter{Make: "Heliopan", Model: "Yellow"}
	require.NoError(t, db.Create(&filter).Error)

	require.NoError(t, svc.SaveFrame(ctx, &entities.Frame{
		RollID: roll.ID, Count: 7, Shutter: "1/250", Aperture: "8", FocalLength: 35,
		LensID: &lens.ID, Filters: []entities.Filter{filter},
	}))
	require.NoError(t, svc.SaveFrame(ctx, &entities.Frame{RollID: roll.ID, Count: 3, Shutter: "1/30"}))

	next, err := svc.NextFrameDefaults(roll.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, next.Count)
	assert.Equal(t, "1/250", next.Shutter)
	assert.Equal(t, "8", next.Aperture)
	assert.Equal(t, 35, next.FocalLength)
	require.NotNil(t, next.LensID)
	assert.Equal(t, lens.ID, *next.LensID)
	assert.Equal(t, []int64{filter.ID}, next.FilterIDs())
	assert.Zero(t, next.ID)

	_, err = svc.NextFrameDefaults(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilmStockService_FilterAndSort(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFilmStockService(db, nil)

	for _, stock := range []*entities.FilmStock{
		{Make: "Kodak", Model: "Portra 160", ISO: 160, Type: entities.FilmTypeColorNegative},
		{Make: "Ilford", Model: "Delta 3200", ISO: 3200, Type: entities.FilmTypeBWNegative},
		{Make: "Kodak", Model: "Ektachrome E100", ISO: 100, Type: entities.FilmTypeColorReversal},
	} {
		require.NoError(t, svc.SaveFilmStock(stock))
		assert.False(t, stock.Preadded)
		assert.Equal(t, entities.FilmProcessUnknown, stock.Process)
	}

	snap := svc.Snapshot()
	assert.Equal(t, Success, snap.State)
	assert.Equal(t, []string{"Ilford", "Kodak"}, snap.Manufacturers)
	assert.Equal(t, []int{100, 160, 3200}, snap.ISOs)
	require.Len(t, snap.FilmStocks, 3)
	assert.Equal(t, "Ilford", snap.FilmStocks[0].Make)

	require.NoError(t, svc.SetSortMode(sorting.FilmStockSortISO))
	svc.SetFilter(sorting.FilmStockFilter{Manufacturers: []string{"Kodak"}})
	snap = svc.Snapshot()
	require.Len(t, snap.FilmStocks, 2)
	assert.Equal(t, 100, snap.FilmStocks[0].ISO)
	assert.Equal(t, 160, snap.FilmStocks[1].ISO)

	stock := snap.FilmStocks[0]
	require.NoError(t, db.Create(&entities.Roll{Name: "r", Date: time.Now(), FilmStockID: &stock.ID}).Error)
	assert.ErrorIs(t, svc.DeleteFilmStock(stock.ID), ErrGearInUse)
	assert.NoError(t, svc.DeleteFilmStock(snap.FilmStocks[1].ID))
	assert.ErrorIs(t, svc.DeleteFilmStock(snap.FilmStocks[1].ID), ErrNotFound)
	assert.ErrorIs(t, svc.SaveFilmStock(&entities.FilmStock{Make: "Kodak"}), ErrInvalidInput)
}

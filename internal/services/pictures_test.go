package services

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/pictures"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func setupPictureService(t *testing.T) (*gorm.DB, *pictures.DiskStore, *PictureService, *entities.Frame) {
	t.Helper()
	db := setupTestDB(t)
	store, err := pictures.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	frameService := NewFrameService(db, nil, store, nil)
	svc := NewPictureService(db, store, frameService, PictureConfig{MaxSize: 64}, nil)

	roll := createRoll(t, db)
	frame := &entities.Frame{RollID: roll.ID, Count: 1}
	require.NoError(t, frameService.SaveFrame(context.Background(), frame))
	return db, store, svc, frame
}

func TestPictureService_UploadReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	_, store, svc, frame := setupPictureService(t)

	first, err := svc.Upload(ctx, frame.ID, bytes.NewReader(pngBytes(t, 200, 100)))
	require.NoError(t, err)

	rc, err := svc.Open(ctx, first)
	require.NoError(t, err)
	img, err := jpeg.Decode(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	second, err := svc.Upload(ctx, frame.ID, bytes.NewReader(pngBytes(t, 10, 10)))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second}, names)

	got, err := svc.frames.GetFrame(frame.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got.PictureFilename)
}

func TestPictureService_UploadRejectsNonImages(t *testing.T) {
	_, store, svc, frame := setupPictureService(t)

	_, err := svc.Upload(context.Background(), frame.ID, strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), frame.ID+100, bytes.NewReader(pngBytes(t, 4, 4)))
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPictureService_RotateAndRemove(t *testing.T) {
	ctx := context.Background()
	_, store, svc, frame := setupPictureService(t)

	_, err := svc.Rotate(ctx, frame.ID, 90)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Upload(ctx, frame.ID, bytes.NewReader(pngBytes(t, 60, 30)))
	require.NoError(t, err)
	rotated, err := svc.Rotate(ctx, frame.ID, 90)
	require.NoError(t, err)

	rc, err := svc.Open(ctx, rotated)
	require.NoError(t, err)
	img, err := jpeg.Decode(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	require.NoError(t, svc.Remove(ctx, frame.ID))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = svc.Open(ctx, rotated)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPictureService_ExportAndCleanup(t *testing.T) {
	ctx := context.Background()
	db, store, svc, frame := setupPictureService(t)

	name, err := svc.Upload(ctx, frame.ID, bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "orphan.jpg", strings.NewReader("x")))

	// A frame that refers to a picture the store lost.
	lost := &entities.Frame{RollID: frame.RollID, Count: 2, PictureFilename: "lost.jpg"}
	require.NoError(t, db.Create(lost).Error)

	var buf bytes.Buffer
	missing, err := svc.ExportZip(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"lost.jpg"}, missing)
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, name, zr.File[0].Name)

	deleted, err := svc.CleanupUnusedPictures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan.jpg"}, deleted)
}

package http

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/logging"
)

// MaxPictureUploadSize bounds the multipart body of a picture upload.
const MaxPictureUploadSize = 32 << 20

type PictureStore interface {
	Upload(ctx context.Context, frameID int64, r io.Reader) (string, error)
	Rotate(ctx context.Context, frameID int64, degrees int) (string, error)
	Remove(ctx context.Context, frameID int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	ExportZip(ctx context.Context, w io.Writer) ([]string, error)
}

type rotateRequest struct {
	Degrees int `json:"degrees"`
}

type PictureController struct {
	store  PictureStore
	logger *zap.Logger
}

func NewPictureController(store PictureStore, logger *zap.Logger) *PictureController {
	return &PictureController{store: store, logger: logging.OrNop(logger)}
}

func (pc *PictureController) RegisterRoutes(r gin.IRouter) {
	r.PUT("/api/frames/:id/picture", pc.Upload)
	r.POST("/api/frames/:id/picture/rotate", pc.Rotate)
	r.DELETE("/api/frames/:id/picture", pc.Remove)
	r.GET("/api/pictures/:name", pc.Serve)
	r.GET("/api/export/pictures.zip", pc.ExportZip)
}

// Upload attaches the "picture" form file to the frame.
// PUT /api/frames/:id/picture
func (pc *PictureController) Upload(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPictureUploadSize)
	fileHeader, err := c.FormFile("picture")
	if err != nil {
		respondBadRequest(c, "picture file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "failed to read uploaded picture")
		return
	}
	defer file.Close()

	name, err := pc.store.Upload(c.Request.Context(), id, file)
	if err != nil {
		respondServiceError(c, pc.logger, err, "upload picture")
		return
	}
	c.JSON(http.StatusOK, gin.H{"picture_filename": name})
}

// POST /api/frames/:id/picture/rotate
func (pc *PictureController) Rotate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req := rotateRequest{Degrees: 90}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid rotation: "+err.Error())
			return
		}
	}
	name, err := pc.store.Rotate(c.Request.Context(), id, req.Degrees)
	if err != nil {
		respondServiceError(c, pc.logger, err, "rotate picture")
		return
	}
	c.JSON(http.StatusOK, gin.H{"picture_filename": name})
}

// DELETE /api/frames/:id/picture
func (pc *PictureController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.store.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, pc.logger, err, "remove picture")
		return
	}
	respondSuccess(c, "picture removed")
}

// GET /api/pictures/:name
func (pc *PictureController) Serve(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	rc, err := pc.store.Open(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, pc.logger, err, "open picture")
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, "image/jpeg", rc, nil)
}

// ExportZip streams every referenced picture as one archive.
// GET /api/export/pictures.zip
func (pc *PictureController) ExportZip(c *gin.Context) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="exif_notes_pictures.zip"`)
	c.Status(http.StatusOK)
	missing, err := pc.store.ExportZip(c.Request.Context(), c.Writer)
	if err != nil {
		// Headers are already sent.
		pc.logger.Error("Picture export failed", zap.Error(err))
		return
	}
	if len(missing) > 0 {
		pc.logger.Warn("Picture export skipped missing files", zap.Int("count", len(missing)))
	}
}

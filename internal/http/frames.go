package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/services"
	"github.com/exifnotes/logbook/internal/sorting"
)

type FrameStore interface {
	Frames(rollID int64) (services.FrameSnapshot, error)
	SetSortMode(mode sorting.FrameSortMode, reversed bool) error
	GetFrame(id int64) (*entities.Frame, error)
	SaveFrame(ctx context.Context, frame *entities.Frame) error
	DeleteFrame(ctx context.Context, id int64) error
	NextFrameDefaults(rollID int64) (*entities.Frame, error)
}

type FrameController struct {
	store  FrameStore
	logger *zap.Logger
}

func NewFrameController(store FrameStore, logger *zap.Logger) *FrameController {
	return &FrameController{store: store, logger: logging.OrNop(logger)}
}

func (fc *FrameController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/rolls/:id/frames", fc.List)
	r.GET("/api/rolls/:id/frames/next", fc.Next)
	r.POST("/api/rolls/:id/frames", fc.Create)
	r.GET("/api/frames/:id", fc.Get)
	r.PUT("/api/frames/:id", fc.Update)
	r.DELETE("/api/frames/:id", fc.Delete)
}

// List returns the frames of a roll. The optional sort and reversed query
// parameters change the display order for every roll.
// GET /api/rolls/:id/frames?sort=f_stop&reversed=true
func (fc *FrameController) List(c *gin.Context) {
	rollID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if mode := c.Query("sort"); mode != "" {
		if err := fc.store.SetSortMode(sorting.FrameSortMode(mode), c.Query("reversed") == "true"); err != nil {
			respondServiceError(c, fc.logger, err, "set frame sort mode")
			return
		}
	}
	snapshot, err := fc.store.Frames(rollID)
	if err != nil {
		respondServiceError(c, fc.logger, err, "list frames")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Next returns an unsaved frame prefilled from the roll's last frame.
// GET /api/rolls/:id/frames/next
func (fc *FrameController) Next(c *gin.Context) {
	rollID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	frame, err := fc.store.NextFrameDefaults(rollID)
	if err != nil {
		respondServiceError(c, fc.logger, err, "next frame")
		return
	}
	c.JSON(http.StatusOK, frame)
}

// POST /api/rolls/:id/frames
func (fc *FrameController) Create(c *gin.Context) {
	rollID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var frame entities.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		respondBadRequest(c, "invalid frame: "+err.Error())
		return
	}
	frame.ID = 0
	frame.RollID = rollID
	// Pictures are attached through the picture endpoints only.
	frame.PictureFilename = ""
	if err := fc.store.SaveFrame(c.Request.Context(), &frame); err != nil {
		respondServiceError(c, fc.logger, err, "create frame")
		return
	}
	respondCreated(c, frame)
}

// GET /api/frames/:id
func (fc *FrameController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	frame, err := fc.store.GetFrame(id)
	if err != nil {
		respondServiceError(c, fc.logger, err, "get frame")
		return
	}
	c.JSON(http.StatusOK, frame)
}

// PUT /api/frames/:id
func (fc *FrameController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	existing, err := fc.store.GetFrame(id)
	if err != nil {
		respondServiceError(c, fc.logger, err, "get frame")
		return
	}
	var frame entities.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		respondBadRequest(c, "invalid frame: "+err.Error())
		return
	}
	frame.ID = id
	frame.RollID = existing.RollID
	frame.PictureFilename = existing.PictureFilename
	if err := fc.store.SaveFrame(c.Request.Context(), &frame); err != nil {
		respondServiceError(c, fc.logger, err, "update frame")
		return
	}
	c.JSON(http.StatusOK, frame)
}

// DELETE /api/frames/:id
func (fc *FrameController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := fc.store.DeleteFrame(c.Request.Context(), id); err != nil {
		respondServiceError(c, fc.logger, err, "delete frame")
		return
	}
	respondSuccess(c, "frame deleted")
}

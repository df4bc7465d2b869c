package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/database/rolls"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/exporters"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/services"
	"github.com/exifnotes/logbook/internal/sorting"
)

type RollStore interface {
	Snapshot() services.RollSnapshot
	SetFilter(filter rolls.RollFilter) error
	SetSortMode(mode sorting.RollSortMode) error
	GetRoll(id int64) (*entities.Roll, error)
	SaveRoll(roll *entities.Roll) error
	DeleteRoll(ctx context.Context, id int64) error
	SetArchived(id int64, archived bool) error
	SetFavorite(id int64, favorite bool) error
	SetRollLabels(id int64, labelIDs []int64) error
	SaveLabel(label *entities.Label) error
	DeleteLabel(id int64) error
}

// RollFrames is the part of the frame service rolls need for export and
// cache eviction.
type RollFrames interface {
	Frames(rollID int64) (services.FrameSnapshot, error)
	Forget(rollID int64)
}

// RollViewRequest changes the roll list filter and order. Omitted fields keep
// their current value.
type RollViewRequest struct {
	Filter   *rolls.RollFilter     `json:"filter"`
	SortMode *sorting.RollSortMode `json:"sort_mode"`
}

type flagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

type RollController struct {
	store    RollStore
	frames   RollFrames
	exifOpts exporters.ExifToolOptions
	logger   *zap.Logger
}

func NewRollController(store RollStore, frames RollFrames, exifOpts exporters.ExifToolOptions, logger *zap.Logger) *RollController {
	return &RollController{store: store, frames: frames, exifOpts: exifOpts, logger: logging.OrNop(logger)}
}

func (rc *RollController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/rolls", rc.List)
	r.PUT("/api/rolls/view", rc.SetView)
	r.POST("/api/rolls", rc.Create)
	r.GET("/api/rolls/:id", rc.Get)
	r.PUT("/api/rolls/:id", rc.Update)
	r.DELETE("/api/rolls/:id", rc.Delete)
	r.PUT("/api/rolls/:id/archived", rc.SetArchived)
	r.PUT("/api/rolls/:id/favorite", rc.SetFavorite)
	r.PUT("/api/rolls/:id/labels", rc.SetLabels)
	r.GET("/api/rolls/:id/export/:format", rc.Export)

	r.GET("/api/labels", rc.ListLabels)
	r.POST("/api/labels", rc.CreateLabel)
	r.PUT("/api/labels/:id", rc.UpdateLabel)
	r.DELETE("/api/labels/:id", rc.DeleteLabel)
}

// GET /api/rolls
func (rc *RollController) List(c *gin.Context) {
	c.JSON(http.StatusOK, rc.store.Snapshot())
}

// PUT /api/rolls/view
func (rc *RollController) SetView(c *gin.Context) {
	var req RollViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid view: "+err.Error())
		return
	}
	if req.SortMode != nil {
		if err := rc.store.SetSortMode(*req.SortMode); err != nil {
			respondServiceError(c, rc.logger, err, "set roll sort mode")
			return
		}
	}
	if req.Filter != nil {
		if err := rc.store.SetFilter(*req.Filter); err != nil {
			respondServiceError(c, rc.logger, err, "set roll filter")
			return
		}
	}
	c.JSON(http.StatusOK, rc.store.Snapshot())
}

// GET /api/rolls/:id
func (rc *RollController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	roll, err := rc.store.GetRoll(id)
	if err != nil {
		respondServiceError(c, rc.logger, err, "get roll")
		return
	}
	c.JSON(http.StatusOK, roll)
}

// POST /api/rolls
func (rc *RollController) Create(c *gin.Context) {
	var roll entities.Roll
	if err := c.ShouldBindJSON(&roll); err != nil {
		respondBadRequest(c, "invalid roll: "+err.Error())
		return
	}
	roll.ID = 0
	if err := rc.store.SaveRoll(&roll); err != nil {
		respondServiceError(c, rc.logger, err, "create roll")
		return
	}
	respondCreated(c, roll)
}

// PUT /api/rolls/:id
func (rc *RollController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := rc.store.GetRoll(id); err != nil {
		respondServiceError(c, rc.logger, err, "get roll")
		return
	}
	var roll entities.Roll
	if err := c.ShouldBindJSON(&roll); err != nil {
		respondBadRequest(c, "invalid roll: "+err.Error())
		return
	}
	roll.ID = id
	if err := rc.store.SaveRoll(&roll); err != nil {
		respondServiceError(c, rc.logger, err, "update roll")
		return
	}
	c.JSON(http.StatusOK, roll)
}

// Delete removes the roll, its frames and their pictures.
// DELETE /api/rolls/:id
func (rc *RollController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.store.DeleteRoll(c.Request.Context(), id); err != nil {
		respondServiceError(c, rc.logger, err, "delete roll")
		return
	}
	if rc.frames != nil {
		rc.frames.Forget(id)
	}
	respondSuccess(c, "roll deleted")
}

// PUT /api/rolls/:id/archived
func (rc *RollController) SetArchived(c *gin.Context) {
	rc.setFlag(c, "archived", rc.store.SetArchived)
}

// PUT /api/rolls/:id/favorite
func (rc *RollController) SetFavorite(c *gin.Context) {
	rc.setFlag(c, "favorite", rc.store.SetFavorite)
}

func (rc *RollController) setFlag(c *gin.Context, name string, set func(int64, bool) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "value is required")
		return
	}
	if err := set(id, *req.Value); err != nil {
		respondServiceError(c, rc.logger, err, "set roll "+name)
		return
	}
	respondSuccess(c, "roll "+name+" updated")
}

// PUT /api/rolls/:id/labels
func (rc *RollController) SetLabels(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "ids are required")
		return
	}
	if err := rc.store.SetRollLabels(id, req.IDs); err != nil {
		respondServiceError(c, rc.logger, err, "set roll labels")
		return
	}
	respondSuccess(c, "roll labels updated")
}

// Export renders the roll's frames, ordered by count, as an attachment.
// GET /api/rolls/:id/export/:format
func (rc *RollController) Export(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	format := exporters.Format(c.Param("format"))
	exporter, err := exporters.ForFormat(format, rc.exifOpts)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	roll, err := rc.store.GetRoll(id)
	if err != nil {
		respondServiceError(c, rc.logger, err, "get roll")
		return
	}
	snapshot, err := rc.frames.Frames(id)
	if err != nil {
		respondServiceError(c, rc.logger, err, "load frames")
		return
	}
	frameList := slices.Clone(snapshot.Frames)
	sorting.SortFrames(frameList, sorting.FrameSortCount)

	var buf bytes.Buffer
	result, err := exporter.Export(&buf, exporters.RollData{Roll: *roll, Frames: frameList})
	if err != nil {
		respondInternalError(c, rc.logger, err, "export roll")
		return
	}
	rc.logger.Info("Exported roll",
		zap.Int64("roll_id", id),
		zap.String("format", string(format)),
		zap.Int("frames", result.FramesProcessed),
		zap.Int("skipped", result.FramesSkipped))

	contentType := "text/plain; charset=utf-8"
	switch format {
	case exporters.FormatCSV:
		contentType = "text/csv; charset=utf-8"
	case exporters.FormatJSON:
		contentType = "application/json"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporters.Filename(exporter, *roll)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// --- Labels ---

// GET /api/labels
func (rc *RollController) ListLabels(c *gin.Context) {
	c.JSON(http.StatusOK, rc.store.Snapshot().Labels)
}

// POST /api/labels
func (rc *RollController) CreateLabel(c *gin.Context) {
	var label entities.Label
	if err := c.ShouldBindJSON(&label); err != nil {
		respondBadRequest(c, "invalid label: "+err.Error())
		return
	}
	label.ID = 0
	if err := rc.store.SaveLabel(&label); err != nil {
		respondServiceError(c, rc.logger, err, "create label")
		return
	}
	respondCreated(c, label)
}

// PUT /api/labels/:id
func (rc *RollController) UpdateLabel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var label entities.Label
	if err := c.ShouldBindJSON(&label); err != nil {
		respondBadRequest(c, "invalid label: "+err.Error())
		return
	}
	label.ID = id
	if err := rc.store.SaveLabel(&label); err != nil {
		respondServiceError(c, rc.logger, err, "update label")
		return
	}
	c.JSON(http.StatusOK, label)
}

// DELETE /api/labels/:id
func (rc *RollController) DeleteLabel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.store.DeleteLabel(id); err != nil {
		respondServiceError(c, rc.logger, err, "delete label")
		return
	}
	respondSuccess(c, "label deleted")
}

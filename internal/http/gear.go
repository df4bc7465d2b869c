package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/exposure"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/services"
)

// GearStore defines the gear operations the controller needs.
type GearStore interface {
	Snapshot() services.GearSnapshot
	GetCamera(id int64) (*entities.Camera, error)
	SaveCamera(camera *entities.Camera) error
	DeleteCamera(id int64) error
	SetCameraLenses(cameraID int64, lensIDs []int64) error
	GetLens(id int64) (*entities.Lens, error)
	SaveLens(lens *entities.Lens) error
	DeleteLens(id int64) error
	SetLensFilters(lensID int64, filterIDs []int64) error
	GetFilter(id int64) (*entities.Filter, error)
	SaveFilter(filter *entities.Filter) error
	DeleteFilter(id int64) error
}

type GearController struct {
	store  GearStore
	logger *zap.Logger
}

func NewGearController(store GearStore, logger *zap.Logger) *GearController {
	return &GearController{store: store, logger: logging.OrNop(logger)}
}

func (gc *GearController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/gear", gc.GetGear)

	r.GET("/api/cameras", gc.ListCameras)
	r.POST("/api/cameras", gc.CreateCamera)
	r.GET("/api/cameras/:id", gc.GetCamera)
	r.PUT("/api/cameras/:id", gc.UpdateCamera)
	r.DELETE("/api/cameras/:id", gc.DeleteCamera)
	r.PUT("/api/cameras/:id/lenses", gc.SetCameraLenses)
	r.GET("/api/cameras/:id/shutter-values", gc.ShutterValues)
	r.GET("/api/cameras/:id/exposure-comp-values", gc.ExposureCompValues)

	r.GET("/api/lenses", gc.ListLenses)
	r.POST("/api/lenses", gc.CreateLens)
	r.GET("/api/lenses/:id", gc.GetLens)
	r.PUT("/api/lenses/:id", gc.UpdateLens)
	r.DELETE("/api/lenses/:id", gc.DeleteLens)
	r.PUT("/api/lenses/:id/filters", gc.SetLensFilters)
	r.GET("/api/lenses/:id/aperture-values", gc.ApertureValues)

	r.GET("/api/filters", gc.ListFilters)
	r.POST("/api/filters", gc.CreateFilter)
	r.GET("/api/filters/:id", gc.GetFilter)
	r.PUT("/api/filters/:id", gc.UpdateFilter)
	r.DELETE("/api/filters/:id", gc.DeleteFilter)
}

// GetGear returns cameras, lenses and filters in one response.
// GET /api/gear
func (gc *GearController) GetGear(c *gin.Context) {
	c.JSON(http.StatusOK, gc.store.Snapshot())
}

// --- Cameras ---

// GET /api/cameras
func (gc *GearController) ListCameras(c *gin.Context) {
	c.JSON(http.StatusOK, gc.store.Snapshot().Cameras)
}

// GET /api/cameras/:id
func (gc *GearController) GetCamera(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	camera, err := gc.store.GetCamera(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get camera")
		return
	}
	c.JSON(http.StatusOK, camera)
}

// POST /api/cameras
func (gc *GearController) CreateCamera(c *gin.Context) {
	var camera entities.Camera
	if err := c.ShouldBindJSON(&camera); err != nil {
		respondBadRequest(c, "invalid camera: "+err.Error())
		return
	}
	camera.ID = 0
	if err := gc.store.SaveCamera(&camera); err != nil {
		respondServiceError(c, gc.logger, err, "create camera")
		return
	}
	respondCreated(c, camera)
}

// PUT /api/cameras/:id
func (gc *GearController) UpdateCamera(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var camera entities.Camera
	if err := c.ShouldBindJSON(&camera); err != nil {
		respondBadRequest(c, "invalid camera: "+err.Error())
		return
	}
	camera.ID = id
	if err := gc.store.SaveCamera(&camera); err != nil {
		respondServiceError(c, gc.logger, err, "update camera")
		return
	}
	c.JSON(http.StatusOK, camera)
}

// DELETE /api/cameras/:id
func (gc *GearController) DeleteCamera(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := gc.store.DeleteCamera(id); err != nil {
		respondServiceError(c, gc.logger, err, "delete camera")
		return
	}
	respondSuccess(c, "camera deleted")
}

// SetCameraLenses replaces the interchangeable lenses compatible with a camera.
// PUT /api/cameras/:id/lenses
func (gc *GearController) SetCameraLenses(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "ids are required")
		return
	}
	if err := gc.store.SetCameraLenses(id, req.IDs); err != nil {
		respondServiceError(c, gc.logger, err, "set camera lenses")
		return
	}
	respondSuccess(c, "camera lenses updated")
}

// ShutterValues lists the shutter speeds the camera offers.
// GET /api/cameras/:id/shutter-values
func (gc *GearController) ShutterValues(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	camera, err := gc.store.GetCamera(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get camera")
		return
	}
	values, err := exposure.ShutterValues(camera.ShutterIncrements, camera.MinShutter, camera.MaxShutter)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

// ExposureCompValues lists the exposure compensation steps of the camera.
// GET /api/cameras/:id/exposure-comp-values
func (gc *GearController) ExposureCompValues(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	camera, err := gc.store.GetCamera(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get camera")
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": exposure.ExposureCompValues(camera.ExposureCompIncrements)})
}

// --- Lenses ---

// GET /api/lenses
func (gc *GearController) ListLenses(c *gin.Context) {
	c.JSON(http.StatusOK, gc.store.Snapshot().Lenses)
}

// GET /api/lenses/:id
func (gc *GearController) GetLens(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lens, err := gc.store.GetLens(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get lens")
		return
	}
	c.JSON(http.StatusOK, lens)
}

// POST /api/lenses
func (gc *GearController) CreateLens(c *gin.Context) {
	var lens entities.Lens
	if err := c.ShouldBindJSON(&lens); err != nil {
		respondBadRequest(c, "invalid lens: "+err.Error())
		return
	}
	lens.ID = 0
	if err := gc.store.SaveLens(&lens); err != nil {
		respondServiceError(c, gc.logger, err, "create lens")
		return
	}
	respondCreated(c, lens)
}

// PUT /api/lenses/:id
func (gc *GearController) UpdateLens(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var lens entities.Lens
	if err := c.ShouldBindJSON(&lens); err != nil {
		respondBadRequest(c, "invalid lens: "+err.Error())
		return
	}
	lens.ID = id
	if err := gc.store.SaveLens(&lens); err != nil {
		respondServiceError(c, gc.logger, err, "update lens")
		return
	}
	c.JSON(http.StatusOK, lens)
}

// DELETE /api/lenses/:id
func (gc *GearController) DeleteLens(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := gc.store.DeleteLens(id); err != nil {
		respondServiceError(c, gc.logger, err, "delete lens")
		return
	}
	respondSuccess(c, "lens deleted")
}

// PUT /api/lenses/:id/filters
func (gc *GearController) SetLensFilters(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "ids are required")
		return
	}
	if err := gc.store.SetLensFilters(id, req.IDs); err != nil {
		respondServiceError(c, gc.logger, err, "set lens filters")
		return
	}
	respondSuccess(c, "lens filters updated")
}

// ApertureValues lists the apertures the lens offers.
// GET /api/lenses/:id/aperture-values
func (gc *GearController) ApertureValues(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lens, err := gc.store.GetLens(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get lens")
		return
	}
	values, err := exposure.ApertureValues(lens.ApertureIncrements, lens.MinAperture, lens.MaxAperture, lens.CustomApertureValues)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

// --- Filters ---

// GET /api/filters
func (gc *GearController) ListFilters(c *gin.Context) {
	c.JSON(http.StatusOK, gc.store.Snapshot().Filters)
}

// GET /api/filters/:id
func (gc *GearController) GetFilter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	filter, err := gc.store.GetFilter(id)
	if err != nil {
		respondServiceError(c, gc.logger, err, "get filter")
		return
	}
	c.JSON(http.StatusOK, filter)
}

// POST /api/filters
func (gc *GearController) CreateFilter(c *gin.Context) {
	var filter entities.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		respondBadRequest(c, "invalid filter: "+err.Error())
		return
	}
	filter.ID = 0
	if err := gc.store.SaveFilter(&filter); err != nil {
		respondServiceError(c, gc.logger, err, "create filter")
		return
	}
	respondCreated(c, filter)
}

// PUT /api/filters/:id
func (gc *GearController) UpdateFilter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var filter entities.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		respondBadRequest(c, "invalid filter: "+err.Error())
		return
	}
	filter.ID = id
	if err := gc.store.SaveFilter(&filter); err != nil {
		respondServiceError(c, gc.logger, err, "update filter")
		return
	}
	c.JSON(http.StatusOK, filter)
}

// DELETE /api/filters/:id
func (gc *GearController) DeleteFilter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := gc.store.DeleteFilter(id); err != nil {
		respondServiceError(c, gc.logger, err, "delete filter")
		return
	}
	respondSuccess(c, "filter deleted")
}

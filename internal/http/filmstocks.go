package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/services"
	"github.com/exifnotes/logbook/internal/sorting"
)

type FilmStockStore interface {
	Snapshot() services.FilmStockSnapshot
	SetFilter(filter sorting.FilmStockFilter)
	SetSortMode(mode sorting.FilmStockSortMode) error
	GetFilmStock(id int64) (*entities.FilmStock, error)
	SaveFilmStock(stock *entities.FilmStock) error
	DeleteFilmStock(id int64) error
}

// FilmStockViewRequest changes how the film stock list is presented.
// Omitted fields keep their current value.
type FilmStockViewRequest struct {
	Filter   *sorting.FilmStockFilter   `json:"filter"`
	SortMode *sorting.FilmStockSortMode `json:"sort_mode"`
}

type FilmStockController struct {
	store  FilmStockStore
	logger *zap.Logger
}

func NewFilmStockController(store FilmStockStore, logger *zap.Logger) *FilmStockController {
	return &FilmStockController{store: store, logger: logging.OrNop(logger)}
}

func (fc *FilmStockController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/film-stocks", fc.List)
	r.PUT("/api/film-stocks/view", fc.SetView)
	r.POST("/api/film-stocks", fc.Create)
	r.GET("/api/film-stocks/:id", fc.Get)
	r.PUT("/api/film-stocks/:id", fc.Update)
	r.DELETE("/api/film-stocks/:id", fc.Delete)
}

// List returns the filtered, sorted film stocks with the filter choices.
// GET /api/film-stocks
func (fc *FilmStockController) List(c *gin.Context) {
	c.JSON(http.StatusOK, fc.store.Snapshot())
}

// PUT /api/film-stocks/view
func (fc *FilmStockController) SetView(c *gin.Context) {
	var req FilmStockViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid view: "+err.Error())
		return
	}
	if req.SortMode != nil {
		if err := fc.store.SetSortMode(*req.SortMode); err != nil {
			respondServiceError(c, fc.logger, err, "set film stock sort mode")
			return
		}
	}
	if req.Filter != nil {
		fc.store.SetFilter(*req.Filter)
	}
	c.JSON(http.StatusOK, fc.store.Snapshot())
}

// GET /api/film-stocks/:id
func (fc *FilmStockController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stock, err := fc.store.GetFilmStock(id)
	if err != nil {
		respondServiceError(c, fc.logger, err, "get film stock")
		return
	}
	c.JSON(http.StatusOK, stock)
}

// POST /api/film-stocks
func (fc *FilmStockController) Create(c *gin.Context) {
	var stock entities.FilmStock
	if err := c.ShouldBindJSON(&stock); err != nil {
		respondBadRequest(c, "invalid film stock: "+err.Error())
		return
	}
	stock.ID = 0
	if err := fc.store.SaveFilmStock(&stock); err != nil {
		respondServiceError(c, fc.logger, err, "create film stock")
		return
	}
	respondCreated(c, stock)
}

// PUT /api/film-stocks/:id
func (fc *FilmStockController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var stock entities.FilmStock
	if err := c.ShouldBindJSON(&stock); err != nil {
		respondBadRequest(c, "invalid film stock: "+err.Error())
		return
	}
	stock.ID = id
	if err := fc.store.SaveFilmStock(&stock); err != nil {
		respondServiceError(c, fc.logger, err, "update film stock")
		return
	}
	c.JSON(http.StatusOK, stock)
}

// DELETE /api/film-stocks/:id
func (fc *FilmStockController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := fc.store.DeleteFilmStock(id); err != nil {
		respondServiceError(c, fc.logger, err, "delete film stock")
		return
	}
	respondSuccess(c, "film stock deleted")
}

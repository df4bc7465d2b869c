package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/filmstocks"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/sorting"
)

// FilmStockSnapshot is the filtered and sorted film stock list.
type FilmStockSnapshot struct {
	State         LoadState                 `json:"state"`
	FilmStocks    []entities.FilmStock      `json:"film_stocks"`
	SortMode      sorting.FilmStockSortMode `json:"sort_mode"`
	Filter        sorting.FilmStockFilter   `json:"filter"`
	Manufacturers []string                  `json:"manufacturers"`
	ISOs          []int                     `json:"isos"`
}

type FilmStockService struct {
	db     *gorm.DB
	logger *zap.Logger

	mu       sync.RWMutex
	state    LoadState
	all      []entities.FilmStock
	filter   sorting.FilmStockFilter
	sortMode sorting.FilmStockSortMode
}

func NewFilmStockService(db *gorm.DB, logger *zap.Logger) *FilmStockService {
	return &FilmStockService{
		db:       db,
		logger:   logging.OrNop(logger).Named("filmstocks"),
		sortMode: sorting.FilmStockSortName,
	}
}

func (s *FilmStockService) Load() error {
	s.mu.Lock()
	s.state = InProgress
	s.mu.Unlock()

	stocks, err := filmstocks.NewRepository(s.db).GetFilmStocks()
	if err != nil {
		return err
	}

	s.mu.Lock()
	sorting.SortFilmStocks(stocks, s.sortMode)
	s.all = stocks
	s.state = Success
	s.mu.Unlock()
	return nil
}

// Snapshot returns the stocks passing the current filter in the current order.
func (s *FilmStockService) Snapshot() FilmStockSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	makes := make([]string, 0, len(s.all))
	for _, stock := range s.all {
		makes = append(makes, stock.Make)
	}
	slices.Sort(makes)

	return FilmStockSnapshot{
		State:         s.state,
		FilmStocks:    s.filter.Apply(s.all),
		SortMode:      s.sortMode,
		Filter:        s.filter,
		Manufacturers: slices.Compact(makes),
		ISOs:          sorting.AvailableISOs(s.all),
	}
}

func (s *FilmStockService) SetFilter(filter sorting.FilmStockFilter) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

func (s *FilmStockService) SetSortMode(mode sorting.FilmStockSortMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidInput, mode)
	}
	s.mu.Lock()
	s.sortMode = mode
	sorting.SortFilmStocks(s.all, mode)
	s.mu.Unlock()
	return nil
}

func (s *FilmStockService) GetFilmStock(id int64) (*entities.FilmStock, error) {
	stock, err := filmstocks.NewRepository(s.db).GetFilmStock(id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("film stock %d: %w", id, ErrNotFound)
	}
	return stock, nil
}

// SaveFilmStock adds or updates a stock. Stocks saved here are user-added.
func (s *FilmStockService) SaveFilmStock(stock *entities.FilmStock) error {
	if strings.TrimSpace(stock.Make) == "" || strings.TrimSpace(stock.Model) == "" {
		return fmt.Errorf("%w: film stock make and model are required", ErrInvalidInput)
	}
	if stock.ISO < 0 {
		return fmt.Errorf("%w: ISO must not be negative", ErrInvalidInput)
	}
	if stock.Type == "" {
		stock.Type = entities.FilmTypeUnknown
	}
	if stock.Process == "" {
		stock.Process = entities.FilmProcessUnknown
	}
	stock.Preadded = false

	repo := filmstocks.NewRepository(s.db)
	if stock.ID == 0 {
		if _, err := repo.AddFilmStock(stock); err != nil {
			return err
		}
	} else {
		affected, err := repo.UpdateFilmStock(stock)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("film stock %d: %w", stock.ID, ErrNotFound)
		}
	}
	s.reload()
	return nil
}

func (s *FilmStockService) DeleteFilmStock(id int64) error {
	repo := filmstocks.NewRepository(s.db)
	inUse, err := repo.IsFilmStockInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("film stock %d: %w", id, ErrGearInUse)
	}
	affected, err := repo.DeleteFilmStock(&entities.FilmStock{ID: id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("film stock %d: %w", id, ErrNotFound)
	}
	s.reload()
	return nil
}

func (s *FilmStockService) reload() {
	if err := s.Load(); err != nil {
		s.logger.Warn("Failed to reload film stocks", zap.Error(err))
	}
}

package filmstocks

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// Repository handles all film stock database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new film stocks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AddFilmStock(stock *entities.FilmStock) (int64, error) {
	if err := r.db.Create(stock).Error; err != nil {
		return 0, fmt.Errorf("add film stock: %w", err)
	}
	return stock.ID, nil
}

// UpdateFilmStock overwrites the film stock row and returns the affected row count.
func (r *Repository) UpdateFilmStock(stock *entities.FilmStock) (int64, error) {
	if stock.ID == 0 {
		return 0, nil
	}
	result := r.db.Model(&entities.FilmStock{}).
		Where(schema.ColFilmStockID+" = ?", stock.ID).
		Updates(map[string]any{
			schema.ColFilmStockMake:     stock.Make,
			schema.ColFilmStockModel:    stock.Model,
			schema.ColFilmStockISO:      stock.ISO,
			schema.ColFilmStockType:     stock.Type,
			schema.ColFilmStockProcess:  stock.Process,
			schema.ColFilmStockPreadded: stock.Preadded,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update film stock %d: %w", stock.ID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) UpsertFilmStock(stock *entities.FilmStock) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: schema.ColFilmStockID}},
		UpdateAll: true,
	}).Create(stock).Error
	if err != nil {
		return fmt.Errorf("upsert film stock: %w", err)
	}
	return nil
}

// DeleteFilmStock removes the film stock. Rolls that reference it keep the
// ID; check IsFilmStockInUse first.
func (r *Repository) DeleteFilmStock(stock *entities.FilmStock) (int64, error) {
	result := r.db.Where(schema.ColFilmStockID+" = ?", stock.ID).Delete(&entities.FilmStock{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete film stock %d: %w", stock.ID, result.Error)
	}
	return result.RowsAffected, nil
}

// GetFilmStock returns the film stock with the given ID, or nil when it does not exist.
func (r *Repository) GetFilmStock(id int64) (*entities.FilmStock, error) {
	var stock entities.FilmStock
	err := r.db.Where(schema.ColFilmStockID+" = ?", id).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get film stock %d: %w", id, err)
	}
	return &stock, nil
}

// GetFilmStocks returns every film stock, bundled and user-added.
func (r *Repository) GetFilmStocks() ([]entities.FilmStock, error) {
	var stocks []entities.FilmStock
	if err := r.db.Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("get film stocks: %w", err)
	}
	return stocks, nil
}

// GetManufacturers returns the distinct film stock manufacturers in alphabetical order.
func (r *Repository) GetManufacturers() ([]string, error) {
	var makes []string
	err := r.db.Model(&entities.FilmStock{}).
		Distinct(schema.ColFilmStockMake).
		Order(schema.ColFilmStockMake).
		Pluck(schema.ColFilmStockMake, &makes).Error
	if err != nil {
		return nil, fmt.Errorf("get film manufacturers: %w", err)
	}
	return makes, nil
}

// IsFilmStockInUse reports whether any roll references the film stock.
func (r *Repository) IsFilmStockInUse(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Roll{}).Where(schema.ColRollFilmStockID+" = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check film stock %d usage: %w", id, err)
	}
	return count > 0, nil
}

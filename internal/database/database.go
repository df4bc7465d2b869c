package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/logging"
)

const slowQueryThreshold = 200 * time.Millisecond

type Database struct {
	DB   *gorm.DB
	Path string

	logger *zap.Logger
}

// NewDatabase opens the SQLite file at dbPath, migrates the schema and seeds
// the bundled film stocks on first run.
func NewDatabase(dbPath string, logger *zap.Logger) (*Database, error) {
	logger = logging.OrNop(logger)

	db, err := Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	database := &Database{DB: db, Path: dbPath, logger: logger}

	if err := database.seedFilmStocks(); err != nil {
		return nil, fmt.Errorf("failed to seed film stocks: %w", err)
	}

	logger.Info("database initialized", zap.String("path", dbPath))

	return database, nil
}

// Open connects to a SQLite file without migrating it.
func Open(dbPath string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logging.NewGormLogger(logger, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every logbook table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(entities.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// RequiredTables lists the tables a logbook database must contain.
var RequiredTables = []string{
	schema.TableCameras,
	schema.TableLenses,
	schema.TableFilters,
	schema.TableFilmStocks,
	schema.TableFrames,
	schema.TableRolls,
	schema.TableLabels,
	schema.TableCameraLens,
	schema.TableLensFilter,
	schema.TableFrameFilter,
	schema.TableRollLabel,
}

// ErrMissingTable is returned by Validate when a required table is absent.
var ErrMissingTable = errors.New("required table missing")

// Validate checks that db contains every required table.
func Validate(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, table := range RequiredTables {
		if !migrator.HasTable(table) {
			return fmt.Errorf("%w: %s", ErrMissingTable, table)
		}
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// seedFilmStocks inserts the bundled film stocks at most once per database.
// A settings row records that seeding ran.
func (d *Database) seedFilmStocks() error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		var markers int64
		err := tx.Model(&entities.Setting{}).
			Where(schema.ColSettingKey+" = ?", schema.SettingFilmStocksSeeded).
			Count(&markers).Error
		if err != nil {
			return err
		}
		if markers > 0 {
			return nil
		}

		// Databases created before the marker existed may already hold the stocks
		var count int64
		if err := tx.Model(&entities.FilmStock{}).Where(schema.ColFilmStockPreadded+" = ?", true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			stocks := PreaddedFilmStocks()
			if err := tx.CreateInBatches(stocks, 50).Error; err != nil {
				return err
			}
			d.logger.Info("seeded film stocks", zap.Int("count", len(stocks)))
		}

		marker := entities.Setting{Key: schema.SettingFilmStocksSeeded, Value: time.Now().UTC().Format(time.RFC3339)}
		return tx.Create(&marker).Error
	})
}

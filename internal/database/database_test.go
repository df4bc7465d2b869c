package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/database/schema"
	"github.com/exifnotes/logbook/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "logbook.db")
	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func TestNewDatabase_CreatesAllTables(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, Validate(db.DB))
	assert.NoError(t, db.Ping())
}

func TestNewDatabase_SeedsFilmStocksOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logbook.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&entities.FilmStock{}).Count(&count).Error)
	assert.Equal(t, int64(len(PreaddedFilmStocks())), count)
	require.NoError(t, db.Close())

	// Reopening must not duplicate the bundled stocks
	db, err = NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Model(&entities.FilmStock{}).Count(&count).Error)
	assert.Equal(t, int64(len(PreaddedFilmStocks())), count)

	var userAdded int64
	require.NoError(t, db.DB.Model(&entities.FilmStock{}).
		Where(schema.ColFilmStockPreadded+" = ?", false).Count(&userAdded).Error)
	assert.Zero(t, userAdded)
}

func TestNewDatabase_DeletedStocksStayDeleted(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logbook.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, db.DB.Where(schema.ColFilmStockPreadded+" = ?", true).Delete(&entities.FilmStock{}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.FilmStock{}).Count(&count).Error)
	assert.Zero(t, count)

	var marker entities.Setting
	require.NoError(t, db.DB.Where(schema.ColSettingKey+" = ?", schema.SettingFilmStocksSeeded).First(&marker).Error)
	assert.NotEmpty(t, marker.Value)
}

func TestNewDatabase_MarksExistingStocksAsSeeded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logbook.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)
	// A database written before the settings table existed
	require.NoError(t, db.DB.Where("1 = 1").Delete(&entities.Setting{}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	var count, markers int64
	require.NoError(t, db.DB.Model(&entities.FilmStock{}).Count(&count).Error)
	assert.Equal(t, int64(len(PreaddedFilmStocks())), count)
	require.NoError(t, db.DB.Model(&entities.Setting{}).Count(&markers).Error)
	assert.Equal(t, int64(1), markers)
}

func TestValidate_MissingTable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.DB.Migrator().DropTable(schema.TableRollLabel))

	err := Validate(db.DB)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTable)
	assert.Contains(t, err.Error(), schema.TableRollLabel)
}

func TestPreaddedFilmStocks(t *testing.T) {
	for _, stock := range PreaddedFilmStocks() {
		assert.True(t, stock.Preadded, stock.Name())
		assert.NotEmpty(t, stock.Make)
		assert.Positive(t, stock.ISO, stock.Name())
	}
}

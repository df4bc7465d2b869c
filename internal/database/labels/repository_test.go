package labels

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/exifnotes/logbook/internal/database"
	"github.com/exifnotes/logbook/internal/database/links"
	"github.com/exifnotes/logbook/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "labels.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db), db
}

func TestRepository_GetLabels_RollCount(t *testing.T) {
	repo, db := setupTestDB(t)
	linkRepo := links.NewRepository(db)

	travel := &entities.Label{Name: "Travel"}
	archive := &entities.Label{Name: "Archive"}
	unused := &entities.Label{Name: "Unused"}
	for _, l := range []*entities.Label{travel, archive, unused} {
		_, err := repo.AddLabel(l)
		require.NoError(t, err)
	}
	require.NoError(t, linkRepo.AddRollLabelLink(1, travel.ID))
	require.NoError(t, linkRepo.AddRollLabelLink(2, travel.ID))
	require.NoError(t, linkRepo.AddRollLabelLink(2, archive.ID))

	got, err := repo.GetLabels()
	require.NoError(t, err)
	assert.Equal(t, []entities.Label{
		{ID: archive.ID, Name: "Archive", RollCount: 1},
		{ID: travel.ID, Name: "Travel", RollCount: 2},
		{ID: unused.ID, Name: "Unused", RollCount: 0},
	}, got)

	one, err := repo.GetLabel(travel.ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 2, one.RollCount)
}

func TestRepository_GetLabel_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)

	got, err := repo.GetLabel(9)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_UpdateLabel(t *testing.T) {
	repo, _ := setupTestDB(t)

	label := &entities.Label{Name: "Wip"}
	_, err := repo.AddLabel(label)
	require.NoError(t, err)

	label.Name = "Work in progress"
	affected, err := repo.UpdateLabel(label)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	found, err := repo.FindByName("Work in progress")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, label.ID, found.ID)

	affected, err = repo.UpdateLabel(&entities.Label{ID: 404, Name: "x"})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestRepository_UpsertAndDeleteLabel(t *testing.T) {
	repo, db := setupTestDB(t)
	linkRepo := links.NewRepository(db)

	label := &entities.Label{Name: "Night"}
	require.NoError(t, repo.UpsertLabel(label))
	label.Name = "Night shots"
	require.NoError(t, repo.UpsertLabel(label))
	require.NoError(t, linkRepo.AddRollLabelLink(3, label.ID))

	all, err := repo.GetLabels()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Night shots", all[0].Name)

	affected, err := repo.DeleteLabel(label)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rollLabels, err := linkRepo.GetRollLabels(3)
	require.NoError(t, err)
	assert.Empty(t, rollLabels)

	found, err := repo.FindByName("Night shots")
	require.NoError(t, err)
	assert.Nil(t, found)
}

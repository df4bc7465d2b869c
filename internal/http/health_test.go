package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/database"
)

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func getHealth(t *testing.T, controller *HealthController) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func databaseHealth(db *database.Database) *HealthController {
	h := NewHealthController("1.0.0")
	h.AddCheck("database", DatabaseCheck(db))
	return h
}

type stoppedSchedule struct{}

func (stoppedSchedule) IsRunning() bool     { return false }
func (stoppedSchedule) NextRun() *time.Time { return nil }

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		w, response := getHealth(t, databaseHealth(setupHealthTestDB(t)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("reports database not configured", func(t *testing.T) {
		w, response := getHealth(t, databaseHealth(nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupHealthTestDB(t)
		require.NoError(t, db.Close())

		w, response := getHealth(t, databaseHealth(db))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("reports the backup schedule", func(t *testing.T) {
		next := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
		h := databaseHealth(setupHealthTestDB(t))
		h.AddCheck("backup_schedule", BackupScheduleCheck(fakeSchedule{next: next}))

		w, response := getHealth(t, h)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "next run 2024-06-01T03:00:00Z", response.Checks["backup_schedule"])
	})

	t.Run("returns unhealthy when the backup scheduler stopped", func(t *testing.T) {
		h := databaseHealth(setupHealthTestDB(t))
		h.AddCheck("backup_schedule", BackupScheduleCheck(stoppedSchedule{}))

		w, response := getHealth(t, h)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "error: scheduler stopped", response.Checks["backup_schedule"])
	})
}

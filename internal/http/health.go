package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/exifnotes/logbook/internal/database"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheck reports the state of one dependency. An error marks the
// service unhealthy.
type HealthCheck func(ctx context.Context) (string, error)

type namedCheck struct {
	name  string
	check HealthCheck
}

type HealthController struct {
	version string
	checks  []namedCheck
}

func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

// AddCheck registers a check reported under name.
func (h *HealthController) AddCheck(name string, check HealthCheck) {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	sort.SliceStable(h.checks, func(i, j int) bool { return h.checks[i].name < h.checks[j].name })
}

// DatabaseCheck pings the database. A nil database is reported as not
// configured without failing.
func DatabaseCheck(db *database.Database) HealthCheck {
	return func(context.Context) (string, error) {
		if db == nil {
			return "not configured", nil
		}
		if err := db.Ping(); err != nil {
			return "", err
		}
		return "ok", nil
	}
}

// BackupScheduleCheck fails when the backup scheduler has stopped.
func BackupScheduleCheck(schedule BackupSchedule) HealthCheck {
	return func(context.Context) (string, error) {
		if !schedule.IsRunning() {
			return "", errors.New("scheduler stopped")
		}
		if next := schedule.NextRun(); next != nil {
			return "next run " + next.Format(time.RFC3339), nil
		}
		return "ok", nil
	}
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	status := "healthy"
	for _, nc := range h.checks {
		result, err := nc.check(ctx)
		if err != nil {
			checks[nc.name] = "error: " + err.Error()
			status = "unhealthy"
			continue
		}
		checks[nc.name] = result
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

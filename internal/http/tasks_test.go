package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exifnotes/logbook/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, id string) (backlite.TaskStatus, error) {
	status, ok := q.statuses[id]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

type fakeSchedule struct {
	next time.Time
}

func (s fakeSchedule) IsRunning() bool     { return true }
func (s fakeSchedule) NextRun() *time.Time { return &s.next }

func tasksRouter(queue TaskQueue, schedule BackupSchedule) *gin.Engine {
	router := gin.New()
	NewTasksController(queue, schedule, nil).RegisterRoutes(router)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestTasksController_RunTask(t *testing.T) {
	queue := &fakeQueue{}
	router := tasksRouter(queue, nil)

	w := serve(router, http.MethodPost, "/api/tasks/backup_database/run")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")

	w = serve(router, http.MethodPost, "/api/tasks/cleanup_unused_pictures/run")
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, queue.enqueued, 2)
	assert.Equal(t, tasks.BackupDatabaseTask{Reason: "manual"}, queue.enqueued[0])
	assert.Equal(t, tasks.CleanupUnusedPicturesTask{}, queue.enqueued[1])

	w = serve(router, http.MethodPost, "/api/tasks/reindex/run")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	queue.err = errors.New("database is locked")
	w = serve(router, http.MethodPost, "/api/tasks/backup_database/run")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTasksController_Status(t *testing.T) {
	queue := &fakeQueue{statuses: map[string]backlite.TaskStatus{"abc": backlite.TaskStatusRunning}}
	router := tasksRouter(queue, nil)

	w := serve(router, http.MethodGet, "/api/tasks/abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running"`)

	w = serve(router, http.MethodGet, "/api/tasks/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodGet, "/api/tasks/types")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "backup_database")
	assert.Contains(t, w.Body.String(), "cleanup_unused_pictures")
}

func TestTasksController_BackupStatus(t *testing.T) {
	w := serve(tasksRouter(&fakeQueue{}, nil), http.MethodGet, "/api/backup/schedule")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": false}`, w.Body.String())

	next := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	w = serve(tasksRouter(&fakeQueue{}, fakeSchedule{next: next}), http.MethodGet, "/api/backup/schedule")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": true, "next_run": "2024-06-01T03:00:00Z"}`, w.Body.String())
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "success", taskStatusToString(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}

package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/logging"
	"github.com/exifnotes/logbook/internal/tasks"
)

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// BackupSchedule reports the state of the scheduled database backup.
type BackupSchedule interface {
	IsRunning() bool
	NextRun() *time.Time
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue    TaskQueue
	schedule BackupSchedule
	logger   *zap.Logger
}

// NewTasksController creates a new TasksController. schedule may be nil when
// scheduled backups are disabled.
func NewTasksController(queue TaskQueue, schedule BackupSchedule, logger *zap.Logger) *TasksController {
	return &TasksController{queue: queue, schedule: schedule, logger: logging.OrNop(logger)}
}

func (tc *TasksController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/tasks/types", tc.ListTaskTypes)
	r.GET("/api/tasks/:id", tc.GetTaskStatus)
	r.POST("/api/tasks/:id/run", tc.RunTask)
	r.GET("/api/backup/schedule", tc.BackupStatus)
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskTypes = []TaskTypeInfo{
	{
		Type:        "cleanup_unused_pictures",
		Description: "Delete stored pictures no frame refers to",
		Queue:       tasks.CleanupUnusedPicturesTask{}.Config().Name,
	},
	{
		Type:        "backup_database",
		Description: "Copy the logbook database to the backup target",
		Queue:       tasks.BackupDatabaseTask{}.Config().Name,
	},
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": taskTypes})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, tc.logger, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTask handles POST /api/tasks/:id/run, where :id is a task type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("id")

	var task backlite.Task
	switch taskType {
	case "cleanup_unused_pictures":
		task = tasks.CleanupUnusedPicturesTask{}
	case "backup_database":
		task = tasks.BackupDatabaseTask{Reason: "manual"}
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, tc.logger, err, "enqueue task")
		return
	}
	respondAccepted(c, "task enqueued", gin.H{"task_id": id, "type": taskType})
}

// BackupStatus handles GET /api/backup/schedule
func (tc *TasksController) BackupStatus(c *gin.Context) {
	if tc.schedule == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	resp := gin.H{"enabled": tc.schedule.IsRunning()}
	if next := tc.schedule.NextRun(); next != nil {
		resp["next_run"] = next.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

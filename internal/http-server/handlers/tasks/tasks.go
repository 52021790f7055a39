package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/http-server/middleware/authn"
	"lifecursor/internal/lib/api/response"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/services/tasks"
)

// queryLayouts are tried in order when parsing start and end.
var queryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type Tasks interface {
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	ListRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Task, error)
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

type Handler struct {
	log   *slog.Logger
	tasks Tasks
}

func New(log *slog.Logger, tasks Tasks) *Handler {
	return &Handler{
		log:   log,
		tasks: tasks,
	}
}

func (h *Handler) Create(c *gin.Context) {
	const op = "handlers.tasks.Create"

	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), authn.User(c).ID, req)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) List(c *gin.Context) {
	const op = "handlers.tasks.List"

	list, err := h.tasks.List(c.Request.Context(), authn.User(c).ID)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListRange serves ?start=...&end=...; end is optional.
func (h *Handler) ListRange(c *gin.Context) {
	const op = "handlers.tasks.ListRange"

	start, err := parseTime(c.Query("start"))
	if err != nil || start.IsZero() {
		response.Error(c, http.StatusBadRequest, "start must be a valid datetime")
		return
	}

	end, err := parseTime(c.Query("end"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "end must be a valid datetime")
		return
	}

	list, err := h.tasks.ListRange(c.Request.Context(), authn.User(c).ID, start, end)
	if err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) Delete(c *gin.Context) {
	const op = "handlers.tasks.Delete"

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), authn.User(c).ID, taskID); err != nil {
		h.fail(c, op, err)
		return
	}

	c.JSON(http.StatusOK, response.Message{Message: "Task deleted"})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, tasks.ErrInvalidTask):
		response.Error(c, http.StatusBadRequest, "Invalid task")
	case errors.Is(err, tasks.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, "Task not found")
	default:
		h.log.Error("task request failed", slog.String("op", op), sl.Err(err))
		response.Internal(c)
	}
}

// parseTime returns the zero time for an empty value. Values without a zone
// are taken as UTC.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	var firstErr error
	for _, layout := range queryLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}

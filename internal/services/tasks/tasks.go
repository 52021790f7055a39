package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/storage"
)

// DefaultRange is the window listed when no end is given.
const DefaultRange = 24 * time.Hour

var (
	ErrInvalidTask  = errors.New("invalid task")
	ErrTaskNotFound = errors.New("task not found")
)

type Storage interface {
	SaveTask(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	TasksInRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Task, error)
	Tasks(ctx context.Context, userID int64) ([]models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

type Tasks struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Tasks {
	return &Tasks{
		log:     log,
		storage: storage,
	}
}

func (t *Tasks) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	const op = "tasks.Create"

	log := t.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
	)

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, ErrInvalidTask)
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, fmt.Errorf("%s: %w: start and end are required", op, ErrInvalidTask)
	}
	if in.End.Before(in.Start) {
		return nil, fmt.Errorf("%s: %w: end precedes start", op, ErrInvalidTask)
	}

	task, err := t.storage.SaveTask(ctx, userID, in)
	if err != nil {
		log.Error("failed to save task", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task created", slog.Int64("taskID", task.ID))

	return task, nil
}

// ListRange returns the user's tasks starting in [start, end). A zero end
// means start plus DefaultRange.
func (t *Tasks) ListRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Task, error) {
	const op = "tasks.ListRange"

	if end.IsZero() {
		end = start.Add(DefaultRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%s: %w: end precedes start", op, ErrInvalidTask)
	}

	tasks, err := t.storage.TasksInRange(ctx, userID, start, end)
	if err != nil {
		t.log.Error("failed to list tasks", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

func (t *Tasks) List(ctx context.Context, userID int64) ([]models.Task, error) {
	const op = "tasks.List"

	tasks, err := t.storage.Tasks(ctx, userID)
	if err != nil {
		t.log.Error("failed to list tasks", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

func (t *Tasks) Delete(ctx context.Context, userID, taskID int64) error {
	const op = "tasks.Delete"

	log := t.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("taskID", taskID),
	)

	if err := t.storage.DeleteTask(ctx, userID, taskID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			log.Warn("task not found")
			return fmt.Errorf("%s: %w", op, ErrTaskNotFound)
		}
		log.Error("failed to delete task", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task deleted")

	return nil
}

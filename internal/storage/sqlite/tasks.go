package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/storage"
)

const taskColumns = `id, title, start, "end", place, description, created_at, updated_at, user_id`

func (s *Storage) SaveTask(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	const op = "storage.sqlite.SaveTask"

	now := s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, start, "end", place, description, created_at, updated_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, formatTime(in.Start), formatTime(in.End), in.Place, in.Description,
		formatTime(now), formatTime(now), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task, err := s.task(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return task, nil
}

// TasksInRange returns the tasks of userID starting in [start, end).
func (s *Storage) TasksInRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Task, error) {
	const op = "storage.sqlite.TasksInRange"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND start >= ? AND start < ? ORDER BY start, id",
		userID, formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

func (s *Storage) Tasks(ctx context.Context, userID int64) ([]models.Task, error) {
	const op = "storage.sqlite.Tasks"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY start, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

func (s *Storage) DeleteTask(ctx context.Context, userID, taskID int64) error {
	const op = "storage.sqlite.DeleteTask"

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", taskID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}

	return nil
}

func (s *Storage) task(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?",
		taskID, userID,
	)
	if err != nil {
		return nil, err
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, storage.ErrTaskNotFound
	}

	return &tasks[0], nil
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Start, &t.End, &t.Place, &t.Description,
			&t.CreatedAt, &t.UpdatedAt, &t.UserID,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

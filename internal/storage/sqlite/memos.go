package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/storage"
)

const memoColumns = "id, title, content, color, created_at, updated_at, user_id"

func (s *Storage) SaveMemo(ctx context.Context, userID int64, in models.MemoInput) (*models.Memo, error) {
	const op = "storage.sqlite.SaveMemo"

	now := s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memos (title, content, color, created_at, updated_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title, in.Content, in.Color, formatTime(now), formatTime(now), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	memo, err := s.memo(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return memo, nil
}

func (s *Storage) Memos(ctx context.Context, userID int64) ([]models.Memo, error) {
	const op = "storage.sqlite.Memos"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	memos := make([]models.Memo, 0)
	for rows.Next() {
		var m models.Memo
		if err := rows.Scan(&m.ID, &m.Title, &m.Content, &m.Color, &m.CreatedAt, &m.UpdatedAt, &m.UserID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return memos, nil
}

// DeleteMemos deletes the memos of userID among ids and returns how many were removed.
func (s *Storage) DeleteMemos(ctx context.Context, userID int64, ids []int64) (int64, error) {
	const op = "storage.sqlite.DeleteMemos"

	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM memos WHERE user_id = ? AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) UpdateMemo(ctx context.Context, userID, memoID int64, in models.MemoInput) (*models.Memo, error) {
	const op = "storage.sqlite.UpdateMemo"

	res, err := s.db.ExecContext(ctx,
		"UPDATE memos SET title = ?, content = ?, color = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		in.Title, in.Content, in.Color, formatTime(s.now()), memoID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMemoNotFound)
	}

	memo, err := s.memo(ctx, userID, memoID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return memo, nil
}

func (s *Storage) memo(ctx context.Context, userID, memoID int64) (*models.Memo, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = ? AND user_id = ?",
		memoID, userID,
	)

	var m models.Memo
	if err := row.Scan(&m.ID, &m.Title, &m.Content, &m.Color, &m.CreatedAt, &m.UpdatedAt, &m.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMemoNotFound
		}
		return nil, err
	}

	return &m, nil
}

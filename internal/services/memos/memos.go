package memos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/storage"
)

var (
	ErrNoMemoIDs    = errors.New("no memo ids provided")
	ErrMemoNotFound = errors.New("memo not found")
)

type Storage interface {
	SaveMemo(ctx context.Context, userID int64, in models.MemoInput) (*models.Memo, error)
	Memos(ctx context.Context, userID int64) ([]models.Memo, error)
	DeleteMemos(ctx context.Context, userID int64, ids []int64) (int64, error)
	UpdateMemo(ctx context.Context, userID, memoID int64, in models.MemoInput) (*models.Memo, error)
}

type Memos struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Memos {
	return &Memos{
		log:     log,
		storage: storage,
	}
}

func (m *Memos) Create(ctx context.Context, userID int64, in models.MemoInput) (*models.Memo, error) {
	const op = "memos.Create"

	log := m.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
	)

	memo, err := m.storage.SaveMemo(ctx, userID, in)
	if err != nil {
		log.Error("failed to save memo", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("memo created", slog.Int64("memoID", memo.ID))

	return memo, nil
}

func (m *Memos) List(ctx context.Context, userID int64) ([]models.Memo, error) {
	const op = "memos.List"

	memos, err := m.storage.Memos(ctx, userID)
	if err != nil {
		m.log.Error("failed to list memos", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return memos, nil
}

// DeleteMany removes the user's memos among ids and returns how many were
// deleted. Ids owned by other users are ignored.
func (m *Memos) DeleteMany(ctx context.Context, userID int64, ids []int64) (int64, error) {
	const op = "memos.DeleteMany"

	log := m.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
	)

	if len(ids) == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrNoMemoIDs)
	}

	n, err := m.storage.DeleteMemos(ctx, userID, ids)
	if err != nil {
		log.Error("failed to delete memos", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		log.Warn("no memos matched", slog.Any("ids", ids))
		return 0, fmt.Errorf("%s: %w", op, ErrMemoNotFound)
	}

	log.Info("memos deleted", slog.Int64("count", n))

	return n, nil
}

func (m *Memos) Update(ctx context.Context, userID, memoID int64, in models.MemoInput) (*models.Memo, error) {
	const op = "memos.Update"

	log := m.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("memoID", memoID),
	)

	memo, err := m.storage.UpdateMemo(ctx, userID, memoID, in)
	if err != nil {
		if errors.Is(err, storage.ErrMemoNotFound) {
			log.Warn("memo not found")
			return nil, fmt.Errorf("%s: %w", op, ErrMemoNotFound)
		}
		log.Error("failed to update memo", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("memo updated")

	return memo, nil
}

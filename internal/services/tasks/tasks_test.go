package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/logger/handlers/slogdiscard"
	"lifecursor/internal/storage/sqlite"
)

func newService(t *testing.T) (*Tasks, *sqlite.Storage) {
	t.Helper()

	s, err := sqlite.New(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Migrate()
	require.NoError(t, err)

	return New(slogdiscard.NewDiscardLogger(), s), s
}

func newUser(t *testing.T, s *sqlite.Storage) int64 {
	t.Helper()

	user, err := s.SaveUser(context.Background(), gofakeit.Username(), []byte("hash"))
	require.NoError(t, err)

	return user.ID
}

func TestCreate_Validation(t *testing.T) {
	svc, s := newService(t)
	userID := newUser(t, s)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   models.TaskInput
	}{
		{name: "blank title", in: models.TaskInput{Title: "  ", Start: start, End: start.Add(time.Hour)}},
		{name: "missing start", in: models.TaskInput{Title: "gym", End: start}},
		{name: "end before start", in: models.TaskInput{Title: "gym", Start: start, End: start.Add(-time.Minute)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), userID, tt.in)
			require.ErrorIs(t, err, ErrInvalidTask)
		})
	}
}

func TestListRange_DefaultsToOneDay(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	userID := newUser(t, s)

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	today, err := svc.Create(ctx, userID, models.TaskInput{
		Title: "review", Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, userID, models.TaskInput{
		Title: "flight", Start: day.Add(24 * time.Hour), End: day.Add(27 * time.Hour),
	})
	require.NoError(t, err)

	got, err := svc.ListRange(ctx, userID, day, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)

	got, err = svc.ListRange(ctx, userID, day, day.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListRange(ctx, userID, day, day.Add(-time.Hour))
	require.ErrorIs(t, err, ErrInvalidTask)
}

func TestDelete_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	owner := newUser(t, s)
	intruder := newUser(t, s)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	task, err := svc.Create(ctx, owner, models.TaskInput{Title: "dentist", Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, intruder, task.ID), ErrTaskNotFound)
	require.NoError(t, svc.Delete(ctx, owner, task.ID))
	require.ErrorIs(t, svc.Delete(ctx, owner, task.ID), ErrTaskNotFound)

	all, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, all)
}

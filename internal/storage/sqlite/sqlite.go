package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/storage"
)

// timeLayout is fixed-width so that stored timestamps compare correctly as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a new instance of the Storage.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	db, err := sql.Open("sqlite3", storagePath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, now: time.Now}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, username string, passHash []byte) (*models.User, error) {
	const op = "storage.sqlite.SaveUser"

	user := &models.User{
		Username:  username,
		PassHash:  passHash,
		Avatar:    models.DefaultAvatar,
		Theme:     models.DefaultTheme,
		CreatedAt: s.now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, avatar, theme, created_at) VALUES (?, ?, ?, ?, ?)",
		user.Username, user.PassHash, user.Avatar, user.Theme, formatTime(user.CreatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) User(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.sqlite.User"

	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, avatar, theme, created_at FROM users WHERE username = ?",
		username,
	)

	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PassHash, &user.Avatar, &user.Theme, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

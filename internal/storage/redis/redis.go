package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lifecursor/internal/revocation"
)

const keyPrefix = "revoked:"

// Storage keeps revoked tokens in Redis; each key expires together with its token.
type Storage struct {
	client *redis.Client
	now    func() time.Time
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, addr, password string, db int) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{client: client, now: time.Now}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// Revoke marks the token as revoked until expiresAt. Already expired tokens are skipped.
func (s *Storage) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const op = "storage.redis.Revoke"

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.client.SetNX(ctx, key(token), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "storage.redis.IsRevoked"

	n, err := s.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

func key(token string) string {
	return keyPrefix + revocation.Key(token)
}

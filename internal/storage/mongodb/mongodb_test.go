package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// newTestStorage connects to the server named by MONGO_URI, each test run in its own database.
func newTestStorage(t *testing.T) (context.Context, *Storage) {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	database := "lifecursor_test_" + gofakeit.LetterN(8)

	s, err := New(ctx, uri, database)
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		_ = s.client.Database(database).Drop(cleanupCtx)
		_ = s.Close(cleanupCtx)
	})

	return ctx, s
}

func TestStorage_RevokeIsRevoked(t *testing.T) {
	ctx, s := newTestStorage(t)

	token := gofakeit.UUID()

	revoked, err := s.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(time.Minute)))

	revoked, err = s.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, gofakeit.UUID())
	require.NoError(t, err)
	assert.False(t, revoked)

	count, err := s.revoked.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestStorage_ExpiredEntry(t *testing.T) {
	ctx, s := newTestStorage(t)

	token := gofakeit.UUID()
	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(time.Minute)))

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	revoked, err := s.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

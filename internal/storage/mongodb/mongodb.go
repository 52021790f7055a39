package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"lifecursor/internal/revocation"
)

const revokedCollection = "revoked_tokens"

// Storage keeps revoked tokens in MongoDB so that revocations survive restarts
// and are shared between server instances.
type Storage struct {
	client  *mongo.Client
	revoked *mongo.Collection
	now     func() time.Time
}

type revokedTokenDoc struct {
	TokenHash string    `bson:"token_hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	RevokedAt time.Time `bson:"revoked_at"`
}

// New connects to MongoDB and sets up indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	s := &Storage{
		client:  client,
		revoked: client.Database(database).Collection(revokedCollection),
		now:     time.Now,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("revoked_tokens.token_hash index: %w", err)
	}

	// mongod deletes documents once expires_at has passed
	_, err = s.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("revoked_tokens.expires_at TTL index: %w", err)
	}

	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Revoke stores the token until expiresAt. Repeated calls keep the first entry.
func (s *Storage) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const op = "storage.mongodb.Revoke"

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}

	hash := revocation.Key(token)

	_, err := s.revoked.UpdateOne(ctx,
		bson.D{{Key: "token_hash", Value: hash}},
		bson.D{{Key: "$setOnInsert", Value: revokedTokenDoc{
			TokenHash: hash,
			ExpiresAt: expiresAt,
			RevokedAt: now,
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// concurrent upsert of the same token
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsRevoked reports whether the token has an unexpired revocation entry.
// The TTL monitor runs about once a minute, so expiry is checked here as well.
func (s *Storage) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "storage.mongodb.IsRevoked"

	var doc revokedTokenDoc
	err := s.revoked.FindOne(ctx, bson.D{{Key: "token_hash", Value: revocation.Key(token)}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return doc.ExpiresAt.After(s.now()), nil
}

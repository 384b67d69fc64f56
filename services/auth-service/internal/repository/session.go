package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/model"
)

// SessionRepository is the refresh-token registry. TakeSession is the
// single-use redemption primitive: it must atomically look up and remove the
// entry so that two concurrent refresh calls with the same token can never
// both succeed.
type SessionRepository interface {
	PutSession(ctx context.Context, session *model.Session) (*model.Session, error)
	TakeSession(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

const sessionCollection = "sessions"

type sessionMongoRepository struct {
	db *mongo.Database
}

// NewSessionMongoRepository creates the sessions collection indexes and
// returns a MongoDB-backed SessionRepository. The TTL index on expires_at
// lets expired registry entries self-evict instead of accumulating until a
// restart.
func NewSessionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) SessionRepository {
	collection := db.Collection(sessionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session indexes")
	}

	return &sessionMongoRepository{db: db}
}

func (r *sessionMongoRepository) PutSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	session.CreatedAt = time.Now()

	result, err := r.db.Collection(sessionCollection).InsertOne(ctx, session)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		session.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return session, nil
}

// TakeSession removes and returns the registry entry for tokenHash in a
// single FindOneAndDelete, so only one caller can ever redeem a given token.
func (r *sessionMongoRepository) TakeSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	result := r.db.Collection(sessionCollection).FindOneAndDelete(ctx, bson.M{"token_hash": tokenHash})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.Session
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionMongoRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.db.Collection(sessionCollection).DeleteOne(ctx, bson.M{"token_hash": tokenHash})
	return err
}

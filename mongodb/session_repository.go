package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// SessionRepositoryMongo implements the domain.SessionRepository interface using MongoDB.
type SessionRepositoryMongo struct {
	collection *mongo.Collection
	now        domain.Clock
}

// NewSessionRepositoryMongo creates a new SessionRepositoryMongo.
// It also ensures that necessary indexes are created on the collection.
func NewSessionRepositoryMongo(ctx context.Context, db *mongo.Database) (*SessionRepositoryMongo, error) {
	repo := &SessionRepositoryMongo{
		collection: db.Collection(SessionsCollection),
		now:        time.Now,
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index(), // Not unique, user can have multiple sessions
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index for automatic cleanup
		},
	}

	opts := options.CreateIndexes()
	_, err := repo.collection.Indexes().CreateMany(ctx, indexModels, opts)
	if err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for sessions collection (might already exist or other error)")
	} else {
		log.Info().Msg("Indexes for sessions collection ensured.")
	}

	return repo, nil
}

// WithClock overrides the time source, for expiry tests.
func (r *SessionRepositoryMongo) WithClock(now domain.Clock) *SessionRepositoryMongo {
	r.now = now
	return r
}

// StoreSession creates a new session.
func (r *SessionRepositoryMongo) StoreSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = NewObjectID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now().UTC()
	}
	// ExpiresAt is set by the caller (AuthService).

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("session with this token already exists")
		}
		log.Error().Err(err).Msg("Error storing session in MongoDB")
		return err
	}
	return nil
}

// GetSessionByToken retrieves a live session by its token. The TTL index
// reaps expired rows eventually, so expiry is also checked here explicitly.
func (r *SessionRepositoryMongo) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		log.Error().Err(err).Msg("Error getting session by token from MongoDB")
		return nil, err
	}
	if session.Expired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// DeleteSessionByToken removes the session bound to the given token.
// Deleting an absent session is not an error, so logout stays idempotent.
func (r *SessionRepositoryMongo) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		log.Error().Err(err).Msg("Error deleting session from MongoDB")
		return err
	}
	return nil
}

// DeleteSessionsByUserID removes all sessions for a given user.
func (r *SessionRepositoryMongo) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error deleting sessions by user ID from MongoDB")
		return 0, err
	}
	return result.DeletedCount, nil
}

// Ensure interface compliance
var _ domain.SessionRepository = (*SessionRepositoryMongo)(nil)

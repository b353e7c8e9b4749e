package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// UserRepository implements domain.UserRepository
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new UserRepository backed by MongoDB.
func NewUserRepository(ctx context.Context, db *mongo.Database) (domain.UserRepository, error) {
	repo := &UserRepository{
		users: db.Collection(UsersCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		// Allow startup when index creation fails against existing compatible indexes.
		log.Warn().Err(err).Msg("Failed to create user indexes (might be due to existing compatible indexes or other non-critical issue)")
	}
	return repo, nil
}

func (r *UserRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}), // Case-insensitive unique email
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	opts := options.CreateIndexes()
	_, err := r.users.Indexes().CreateMany(ctx, indexModels, opts)
	if err != nil {
		log.Warn().Err(err).Msg("Error creating indexes for users collection (may already exist or options conflict)")
		return fmt.Errorf("failed to create indexes for users collection: %w", err)
	}
	log.Info().Msg("Indexes for users collection ensured.")
	return nil
}

// CreateUser creates a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = time.Now().UTC()
	if user.Theme == "" {
		user.Theme = domain.DefaultTheme
	}
	if user.FavoriteIDs == nil {
		user.FavoriteIDs = []string{}
	}

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) { // Duplicate email, username, or _id
			return domain.ErrDuplicateUser
		}
		log.Error().Err(err).Str("email", user.Email).Msg("Error creating user in MongoDB")
		return err
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting user by ID from MongoDB")
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. The lookup matches the
// case-insensitive collation of the unique email index.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	opts := options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
	err := r.users.FindOne(ctx, bson.M{"email": email}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("email", email).Msg("Error getting user by email from MongoDB")
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, sorted by username.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		log.Error().Err(err).Msg("Error listing users from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err = cursor.All(ctx, &users); err != nil {
		log.Error().Err(err).Msg("Error decoding listed users from MongoDB")
		return nil, err
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of the update to the user and
// returns the updated document.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Zipcode != nil {
		set["zipcode"] = *update.Zipcode
	}
	if update.Theme != nil {
		set["theme"] = *update.Theme
	}
	if update.IsAdmin != nil {
		set["is_admin"] = *update.IsAdmin
	}

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// UpdatePassword replaces the stored password hash for the user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	update := bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Error updating user password in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddFavorite adds a school to the user's favorites. Adding an already
// favorited school leaves the list unchanged.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, schoolID string) (*domain.User, error) {
	update := bson.M{
		"$addToSet": bson.M{"favorite_ids": schoolID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, userID, update)
}

// RemoveFavorite removes a school from the user's favorites.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, schoolID string) (*domain.User, error) {
	update := bson.M{
		"$pull": bson.M{"favorite_ids": schoolID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, userID, update)
}

// DeleteUser removes the user document.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Error deleting user from MongoDB")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user domain.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateUser
		}
		log.Error().Err(err).Str("id", id).Msg("Error updating user in MongoDB")
		return nil, err
	}
	return &user, nil
}

// Ensure interface compliance
var _ domain.UserRepository = (*UserRepository)(nil)

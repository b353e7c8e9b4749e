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

// ReviewRepository implements domain.ReviewRepository
type ReviewRepository struct {
	reviews *mongo.Collection
}

// NewReviewRepository creates a new ReviewRepository backed by MongoDB.
func NewReviewRepository(ctx context.Context, db *mongo.Database) (domain.ReviewRepository, error) {
	repo := &ReviewRepository{
		reviews: db.Collection(ReviewsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "school_id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index(),
		},
	}

	opts := options.CreateIndexes()
	if _, err := repo.reviews.Indexes().CreateMany(ctx, indexModels, opts); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for reviews collection (might already exist or other error)")
	} else {
		log.Info().Msg("Indexes for reviews collection ensured.")
	}

	return repo, nil
}

// CreateReview creates a new review.
func (r *ReviewRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	if review.ID == "" {
		review.ID = NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	review.UpdatedAt = time.Now().UTC()

	_, err := r.reviews.InsertOne(ctx, review)
	if err != nil {
		log.Error().Err(err).Str("schoolID", review.SchoolID).Msg("Error creating review in MongoDB")
		return err
	}
	return nil
}

// GetReviewByID retrieves a review by its ID.
func (r *ReviewRepository) GetReviewByID(ctx context.Context, id string) (*domain.Review, error) {
	var review domain.Review
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting review by ID from MongoDB")
		return nil, err
	}
	return &review, nil
}

// FindReviewsByIDs returns the reviews whose IDs appear in the given list.
func (r *ReviewRepository) FindReviewsByIDs(ctx context.Context, ids []string) ([]*domain.Review, error) {
	if len(ids) == 0 {
		return []*domain.Review{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// FindReviewsByOwner returns all reviews written by the given user.
func (r *ReviewRepository) FindReviewsByOwner(ctx context.Context, ownerID string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

// AverageRatingForSchool computes the mean rating over the reviews of a
// single school. It returns 0 when the school has no reviews.
func (r *ReviewRepository) AverageRatingForSchool(ctx context.Context, schoolID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"school_id": schoolID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error().Err(err).Str("schoolID", schoolID).Msg("Error aggregating review ratings in MongoDB")
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Rating float64 `bson:"rating"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		log.Error().Err(err).Msg("Error decoding review rating aggregate from MongoDB")
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Rating, nil
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	cursor, err := r.reviews.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		log.Error().Err(err).Msg("Error finding reviews in MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*domain.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		log.Error().Err(err).Msg("Error decoding reviews from MongoDB")
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}

// Ensure interface compliance
var _ domain.ReviewRepository = (*ReviewRepository)(nil)

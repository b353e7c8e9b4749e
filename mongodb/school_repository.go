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

// SchoolRepository implements domain.SchoolRepository
type SchoolRepository struct {
	schools *mongo.Collection
}

// NewSchoolRepository creates a new SchoolRepository backed by MongoDB.
func NewSchoolRepository(ctx context.Context, db *mongo.Database) (domain.SchoolRepository, error) {
	repo := &SchoolRepository{
		schools: db.Collection(SchoolsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "zipcode", Value: 1}},
			Options: options.Index(), // Not unique, many schools share a zipcode
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}

	opts := options.CreateIndexes()
	if _, err := repo.schools.Indexes().CreateMany(ctx, indexModels, opts); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for schools collection (might already exist or other error)")
	} else {
		log.Info().Msg("Indexes for schools collection ensured.")
	}

	return repo, nil
}

// CreateSchool creates a new school.
func (r *SchoolRepository) CreateSchool(ctx context.Context, school *domain.School) error {
	if school.ID == "" {
		school.ID = NewObjectID()
	}
	if school.CreatedAt.IsZero() {
		school.CreatedAt = time.Now().UTC()
	}
	school.UpdatedAt = time.Now().UTC()
	if school.ReviewIDs == nil {
		school.ReviewIDs = []string{}
	}
	if school.Images == nil {
		school.Images = []domain.SchoolImage{}
	}

	_, err := r.schools.InsertOne(ctx, school)
	if err != nil {
		log.Error().Err(err).Str("name", school.Name).Msg("Error creating school in MongoDB")
		return err
	}
	return nil
}

// GetSchoolByID retrieves a school by its ID.
func (r *SchoolRepository) GetSchoolByID(ctx context.Context, id string) (*domain.School, error) {
	var school domain.School
	err := r.schools.FindOne(ctx, bson.M{"_id": id}).Decode(&school)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSchoolNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting school by ID from MongoDB")
		return nil, err
	}
	return &school, nil
}

// FindSchoolsByZipcode returns all schools registered in a zipcode.
func (r *SchoolRepository) FindSchoolsByZipcode(ctx context.Context, zipcode string) ([]*domain.School, error) {
	return r.find(ctx, bson.M{"zipcode": zipcode})
}

// FindSchoolsByIDs returns the schools whose IDs appear in the given list.
// IDs with no matching document are silently skipped.
func (r *SchoolRepository) FindSchoolsByIDs(ctx context.Context, ids []string) ([]*domain.School, error) {
	if len(ids) == 0 {
		return []*domain.School{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListSchools returns all schools, sorted by name.
func (r *SchoolRepository) ListSchools(ctx context.Context) ([]*domain.School, error) {
	return r.find(ctx, bson.M{})
}

// UpdateSchool applies the non-nil fields of the update and returns the
// updated document.
func (r *SchoolRepository) UpdateSchool(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.City != nil {
		set["city"] = *update.City
	}
	if update.State != nil {
		set["state"] = *update.State
	}
	if update.Zipcode != nil {
		set["zipcode"] = *update.Zipcode
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Website != nil {
		set["website"] = *update.Website
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Rating != nil {
		set["rating"] = *update.Rating
	}
	if update.OffersDaycare != nil {
		set["offers_daycare"] = *update.OffersDaycare
	}
	if update.AgeRange != nil {
		set["age_range"] = update.AgeRange
	}
	if update.EarlyEnrollment != nil {
		set["early_enrollment"] = *update.EarlyEnrollment
	}
	if update.MinTuition != nil {
		set["min_tuition"] = *update.MinTuition
	}
	if update.MaxTuition != nil {
		set["max_tuition"] = *update.MaxTuition
	}
	if update.DaysOpen != nil {
		set["days_open"] = update.DaysOpen
	}
	if update.DaysClosed != nil {
		set["days_closed"] = update.DaysClosed
	}
	if update.OpeningHours != nil {
		set["opening_hours"] = *update.OpeningHours
	}
	if update.ClosingHours != nil {
		set["closing_hours"] = *update.ClosingHours
	}
	if update.MinEnrollment != nil {
		set["min_enrollment"] = *update.MinEnrollment
	}
	if update.MaxEnrollment != nil {
		set["max_enrollment"] = *update.MaxEnrollment
	}
	if update.MinStudentTeacherRatio != nil {
		set["min_student_teacher_ratio"] = *update.MinStudentTeacherRatio
	}
	if update.MaxStudentTeacherRatio != nil {
		set["max_student_teacher_ratio"] = *update.MaxStudentTeacherRatio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.IsVerified != nil {
		set["is_verified"] = *update.IsVerified
	}

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// AttachReview links a review to the school. Attaching the same review
// twice leaves the list unchanged.
func (r *SchoolRepository) AttachReview(ctx context.Context, schoolID, reviewID string) error {
	update := bson.M{
		"$addToSet": bson.M{"review_ids": reviewID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.schools.UpdateOne(ctx, bson.M{"_id": schoolID}, update)
	if err != nil {
		log.Error().Err(err).Str("schoolID", schoolID).Msg("Error attaching review to school in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSchoolNotFound
	}
	return nil
}

// SetRating stores the aggregate rating for the school.
func (r *SchoolRepository) SetRating(ctx context.Context, schoolID string, rating float64) error {
	update := bson.M{"$set": bson.M{
		"rating":     rating,
		"updated_at": time.Now().UTC(),
	}}
	result, err := r.schools.UpdateOne(ctx, bson.M{"_id": schoolID}, update)
	if err != nil {
		log.Error().Err(err).Str("schoolID", schoolID).Msg("Error setting school rating in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSchoolNotFound
	}
	return nil
}

// DeleteSchool removes the school document.
func (r *SchoolRepository) DeleteSchool(ctx context.Context, id string) error {
	result, err := r.schools.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Error deleting school from MongoDB")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrSchoolNotFound
	}
	return nil
}

func (r *SchoolRepository) find(ctx context.Context, filter bson.M) ([]*domain.School, error) {
	cursor, err := r.schools.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Error().Err(err).Msg("Error finding schools in MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var schools []*domain.School
	if err = cursor.All(ctx, &schools); err != nil {
		log.Error().Err(err).Msg("Error decoding schools from MongoDB")
		return nil, err
	}
	if schools == nil {
		schools = []*domain.School{}
	}
	return schools, nil
}

func (r *SchoolRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.School, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var school domain.School
	err := r.schools.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&school)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSchoolNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error updating school in MongoDB")
		return nil, err
	}
	return &school, nil
}

// Ensure interface compliance
var _ domain.SchoolRepository = (*SchoolRepository)(nil)

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// ErrAlreadyReviewed is returned when a user tries to review the same school
// twice.
var ErrAlreadyReviewed = errors.New("you have already reviewed this school")

// ReviewService owns review creation and the rating aggregate kept on the
// school document.
type ReviewService struct {
	reviewRepo domain.ReviewRepository
	schoolRepo domain.SchoolRepository
	userRepo   domain.UserRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo domain.ReviewRepository,
	schoolRepo domain.SchoolRepository,
	userRepo domain.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		schoolRepo: schoolRepo,
		userRepo:   userRepo,
	}
}

// AddReview stores a review, links it to its school, and recomputes that
// school's average rating. One review per user per school.
func (s *ReviewService) AddReview(ctx context.Context, rating int, reviewText, schoolID string) (*domain.Review, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if schoolID == "" {
		return nil, errors.New("please provide a school ID")
	}

	existing, err := s.reviewRepo.FindReviewsByOwner(ctx, ac.User.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.SchoolID == schoolID {
			return nil, ErrAlreadyReviewed
		}
	}

	review := &domain.Review{
		SchoolID: schoolID,
		OwnerID:  ac.User.ID,
		Rating:   rating,
		Review:   reviewText,
	}
	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	if err := s.schoolRepo.AttachReview(ctx, schoolID, review.ID); err != nil {
		return nil, fmt.Errorf("attaching review to school: %w", err)
	}

	avg, err := s.reviewRepo.AverageRatingForSchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("averaging ratings: %w", err)
	}
	if err := s.schoolRepo.SetRating(ctx, schoolID, avg); err != nil {
		return nil, fmt.Errorf("updating school rating: %w", err)
	}

	log.Info().Str("reviewID", review.ID).Str("schoolID", schoolID).
		Str("ownerID", ac.User.ID).Int("rating", rating).Msg("Review added")
	return review, nil
}

// Owner resolves a review's author. The owner id can dangle after an admin
// deleted the account; that surfaces as an explicit error, not a nil user.
func (s *ReviewService) Owner(ctx context.Context, review *domain.Review) (*domain.User, error) {
	owner, err := s.userRepo.GetUserByID(ctx, review.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, errors.New("no user found for this review")
		}
		return nil, err
	}
	return owner.Sanitized(), nil
}

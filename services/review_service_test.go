package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

func TestAddReview(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	schoolRepo := new(MockSchoolRepository)
	svc := NewReviewService(reviewRepo, schoolRepo, new(MockUserRepository))
	ctx := authedCtx(&domain.User{ID: "user-1"})

	reviewRepo.On("FindReviewsByOwner", mock.Anything, "user-1").Return([]*domain.Review{}, nil)
	reviewRepo.On("CreateReview", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Review).ID = "review-1" }).
		Return(nil)
	schoolRepo.On("AttachReview", mock.Anything, "school-1", "review-1").Return(nil)
	reviewRepo.On("AverageRatingForSchool", mock.Anything, "school-1").Return(4.5, nil)
	schoolRepo.On("SetRating", mock.Anything, "school-1", 4.5).Return(nil)

	review, err := svc.AddReview(ctx, 5, "lovely teachers", "school-1")
	require.NoError(t, err)

	assert.Equal(t, "review-1", review.ID)
	assert.Equal(t, "user-1", review.OwnerID)
	schoolRepo.AssertCalled(t, "AttachReview", mock.Anything, "school-1", "review-1")
	// The aggregate is scoped to the reviewed school only.
	reviewRepo.AssertCalled(t, "AverageRatingForSchool", mock.Anything, "school-1")
	schoolRepo.AssertCalled(t, "SetRating", mock.Anything, "school-1", 4.5)
}

func TestAddReviewDedupe(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	schoolRepo := new(MockSchoolRepository)
	svc := NewReviewService(reviewRepo, schoolRepo, new(MockUserRepository))
	ctx := authedCtx(&domain.User{ID: "user-1"})

	reviewRepo.On("FindReviewsByOwner", mock.Anything, "user-1").
		Return([]*domain.Review{{ID: "review-0", SchoolID: "school-1", OwnerID: "user-1"}}, nil)

	_, err := svc.AddReview(ctx, 3, "changed my mind", "school-1")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	reviewRepo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestAddReviewRequiresAuth(t *testing.T) {
	svc := NewReviewService(new(MockReviewRepository), new(MockSchoolRepository), new(MockUserRepository))

	_, err := svc.AddReview(anonCtx(), 5, "anonymous praise", "school-1")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = svc.AddReview(authedCtx(&domain.User{ID: "user-1"}), 5, "no school", "")
	require.Error(t, err)
}

func TestReviewOwner(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewReviewService(new(MockReviewRepository), new(MockSchoolRepository), userRepo)

	userRepo.On("GetUserByID", mock.Anything, "user-1").
		Return(&domain.User{ID: "user-1", Username: "frodo", PasswordHash: "hashed:x"}, nil)
	owner, err := svc.Owner(context.Background(), &domain.Review{ID: "review-1", OwnerID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "frodo", owner.Username)
	assert.Empty(t, owner.PasswordHash)

	// Owner deleted by an admin after the review was written.
	userRepo.On("GetUserByID", mock.Anything, "user-gone").Return(nil, domain.ErrUserNotFound)
	_, err = svc.Owner(context.Background(), &domain.Review{ID: "review-2", OwnerID: "user-gone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user found for this review")
}

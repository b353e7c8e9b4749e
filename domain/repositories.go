package domain

import (
	"context"
	"time"
)

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	AddFavorite(ctx context.Context, userID, schoolID string) (*User, error)
	RemoveFavorite(ctx context.Context, userID, schoolID string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository is the persistence contract for login sessions.
// DeleteSessionByToken is idempotent: deleting a session that is already gone
// is a no-op, not an error (double logout must not fail).
type SessionRepository interface {
	StoreSession(ctx context.Context, session *Session) error
	GetSessionByToken(ctx context.Context, token string) (*Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}

// SchoolRepository is the persistence contract for listings.
type SchoolRepository interface {
	CreateSchool(ctx context.Context, school *School) error
	GetSchoolByID(ctx context.Context, id string) (*School, error)
	FindSchoolsByZipcode(ctx context.Context, zipcode string) ([]*School, error)
	FindSchoolsByIDs(ctx context.Context, ids []string) ([]*School, error)
	ListSchools(ctx context.Context) ([]*School, error)
	UpdateSchool(ctx context.Context, id string, update SchoolUpdate) (*School, error)
	AttachReview(ctx context.Context, schoolID, reviewID string) error
	SetRating(ctx context.Context, schoolID string, rating float64) error
	DeleteSchool(ctx context.Context, id string) error
}

// ReviewRepository is the persistence contract for reviews.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReviewByID(ctx context.Context, id string) (*Review, error)
	FindReviewsByIDs(ctx context.Context, ids []string) ([]*Review, error)
	FindReviewsByOwner(ctx context.Context, ownerID string) ([]*Review, error)
	AverageRatingForSchool(ctx context.Context, schoolID string) (float64, error)
}

// Clock abstracts time.Now for expiry checks in tests.
type Clock func() time.Time

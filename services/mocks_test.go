package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/schoolatlas-dev/schoolatlas/domain"
	"github.com/schoolatlas-dev/schoolatlas/internal/geocode"
)

// --- Mock implementations shared by the service tests ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) AddFavorite(ctx context.Context, userID, schoolID string) (*domain.User, error) {
	args := m.Called(ctx, userID, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) RemoveFavorite(ctx context.Context, userID, schoolID string) (*domain.User, error) {
	args := m.Called(ctx, userID, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) CreateSchool(ctx context.Context, school *domain.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) GetSchoolByID(ctx context.Context, id string) (*domain.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.School), args.Error(1)
}

func (m *MockSchoolRepository) FindSchoolsByZipcode(ctx context.Context, zipcode string) ([]*domain.School, error) {
	args := m.Called(ctx, zipcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.School), args.Error(1)
}

func (m *MockSchoolRepository) FindSchoolsByIDs(ctx context.Context, ids []string) ([]*domain.School, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.School), args.Error(1)
}

func (m *MockSchoolRepository) ListSchools(ctx context.Context) ([]*domain.School, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.School), args.Error(1)
}

func (m *MockSchoolRepository) UpdateSchool(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.School), args.Error(1)
}

func (m *MockSchoolRepository) AttachReview(ctx context.Context, schoolID, reviewID string) error {
	args := m.Called(ctx, schoolID, reviewID)
	return args.Error(0)
}

func (m *MockSchoolRepository) SetRating(ctx context.Context, schoolID string, rating float64) error {
	args := m.Called(ctx, schoolID, rating)
	return args.Error(0)
}

func (m *MockSchoolRepository) DeleteSchool(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetReviewByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) FindReviewsByIDs(ctx context.Context, ids []string) ([]*domain.Review, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) FindReviewsByOwner(ctx context.Context, ownerID string) ([]*domain.Review, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) AverageRatingForSchool(ctx context.Context, schoolID string) (float64, error) {
	args := m.Called(ctx, schoolID)
	return args.Get(0).(float64), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRecoveryEmail(ctx context.Context, toEmail, tempPassword string) error {
	args := m.Called(ctx, toEmail, tempPassword)
	return args.Error(0)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) LatLng(ctx context.Context, address, city, state string) (geocode.Location, error) {
	args := m.Called(ctx, address, city, state)
	return args.Get(0).(geocode.Location), args.Error(1)
}

func (m *MockGeocoder) ZipcodeLocation(ctx context.Context, zipcode string) (*geocode.ZipcodeLocation, error) {
	args := m.Called(ctx, zipcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.ZipcodeLocation), args.Error(1)
}

// Interface compliance for the mocks.
var (
	_ domain.UserRepository    = (*MockUserRepository)(nil)
	_ domain.SessionRepository = (*MockSessionRepository)(nil)
	_ domain.SchoolRepository  = (*MockSchoolRepository)(nil)
	_ domain.ReviewRepository  = (*MockReviewRepository)(nil)
	_ Mailer                   = (*MockMailer)(nil)
	_ Geocoder                 = (*MockGeocoder)(nil)
)

// authedCtx builds a request context carrying a resolved identity.
func authedCtx(user *domain.User) context.Context {
	return domain.WithAuthContext(context.Background(), &domain.AuthContext{User: user})
}

func anonCtx() context.Context {
	return domain.WithAuthContext(context.Background(), &domain.AuthContext{})
}

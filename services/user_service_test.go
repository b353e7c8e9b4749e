package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

func newTestUserService(
	userRepo *MockUserRepository,
	schoolRepo *MockSchoolRepository,
	sessionRepo *MockSessionRepository,
	mailer *MockMailer,
) *UserService {
	return NewUserService(userRepo, schoolRepo, sessionRepo, fixedHasher{}, mailer)
}

func TestMe(t *testing.T) {
	svc := newTestUserService(new(MockUserRepository), new(MockSchoolRepository), new(MockSessionRepository), new(MockMailer))

	user := &domain.User{ID: "user-1", Username: "frodo"}
	got, err := svc.Me(authedCtx(user))
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	_, err = svc.Me(anonCtx())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAllUsersRequiresAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), new(MockMailer))

	_, err := svc.AllUsers(anonCtx())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = svc.AllUsers(authedCtx(&domain.User{ID: "user-1"}))
	assert.ErrorIs(t, err, ErrAdminOnly)

	userRepo.On("ListUsers", mock.Anything).Return([]*domain.User{
		{ID: "user-1", PasswordHash: "hashed:x"},
	}, nil)
	users, err := svc.AllUsers(authedCtx(&domain.User{ID: "admin-1", IsAdmin: true}))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestUpdateInfoCannotGrantAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), new(MockMailer))

	yes := true
	name := "frodo9"
	var captured domain.UserUpdate
	userRepo.On("UpdateUser", mock.Anything, "user-1", mock.AnythingOfType("domain.UserUpdate")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(domain.UserUpdate) }).
		Return(&domain.User{ID: "user-1", Username: name}, nil)

	_, err := svc.UpdateInfo(authedCtx(&domain.User{ID: "user-1"}), domain.UserUpdate{Username: &name, IsAdmin: &yes})
	require.NoError(t, err)

	assert.Nil(t, captured.IsAdmin, "self-service update must drop the admin flag")
	require.NotNil(t, captured.Username)
	assert.Equal(t, "frodo9", *captured.Username)
}

func TestUpdatePassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), new(MockMailer))
	ctx := authedCtx(&domain.User{ID: "user-1"})

	stored := &domain.User{ID: "user-1", PasswordHash: "hashed:old"}
	userRepo.On("GetUserByID", mock.Anything, "user-1").Return(stored, nil)
	userRepo.On("UpdatePassword", mock.Anything, "user-1", "hashed:new").Return(nil)

	_, err := svc.UpdatePassword(ctx, "old", "new")
	require.NoError(t, err)
	userRepo.AssertCalled(t, "UpdatePassword", mock.Anything, "user-1", "hashed:new")

	_, err = svc.UpdatePassword(ctx, "", "new")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.UpdatePassword(ctx, "same", "same")
	assert.ErrorIs(t, err, ErrSamePassword)

	_, err = svc.UpdatePassword(ctx, "wrong", "new")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = svc.UpdatePassword(anonCtx(), "old", "new")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestFavorites(t *testing.T) {
	userRepo := new(MockUserRepository)
	schoolRepo := new(MockSchoolRepository)
	svc := newTestUserService(userRepo, schoolRepo, new(MockSessionRepository), new(MockMailer))
	ctx := authedCtx(&domain.User{ID: "user-1"})

	userRepo.On("AddFavorite", mock.Anything, "user-1", "school-1").
		Return(&domain.User{ID: "user-1", FavoriteIDs: []string{"school-1"}}, nil)
	updated, err := svc.AddFavorite(ctx, "school-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"school-1"}, updated.FavoriteIDs)

	_, err = svc.AddFavorite(ctx, "")
	require.Error(t, err)

	_, err = svc.AddFavorite(anonCtx(), "school-1")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	userRepo.On("RemoveFavorite", mock.Anything, "user-1", "school-1").
		Return(&domain.User{ID: "user-1"}, nil)
	updated, err = svc.RemoveFavorite(ctx, "school-1")
	require.NoError(t, err)
	assert.Empty(t, updated.FavoriteIDs)

	schoolRepo.On("FindSchoolsByIDs", mock.Anything, []string{"school-1"}).
		Return([]*domain.School{{ID: "school-1", Name: "Shire Elementary"}}, nil)
	favorites, err := svc.Favorites(ctx, &domain.User{ID: "user-1", FavoriteIDs: []string{"school-1"}})
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	favorites, err = svc.Favorites(ctx, &domain.User{ID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestRecoverPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), mailer)

	userRepo.On("GetUserByEmail", mock.Anything, "frodo@shire.me").
		Return(&domain.User{ID: "user-1", Email: "frodo@shire.me"}, nil)

	var mailedPassword string
	mailer.On("SendRecoveryEmail", mock.Anything, "frodo@shire.me", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { mailedPassword = args.String(2) }).
		Return(nil)

	var storedHash string
	userRepo.On("UpdatePassword", mock.Anything, "user-1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).
		Return(nil)

	require.NoError(t, svc.RecoverPassword(context.Background(), "frodo@shire.me"))

	assert.Len(t, mailedPassword, tempPasswordLength)
	assert.Equal(t, "hashed:"+mailedPassword, storedHash, "the mailed password must match the stored hash")
}

func TestRecoverPasswordUnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), mailer)

	userRepo.On("GetUserByEmail", mock.Anything, "nobody@shire.me").Return(nil, domain.ErrUserNotFound)

	err := svc.RecoverPassword(context.Background(), "nobody@shire.me")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	mailer.AssertNotCalled(t, "SendRecoveryEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminAddUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), new(MockSessionRepository), mailer)
	admin := authedCtx(&domain.User{ID: "admin-1", IsAdmin: true})

	userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.User).ID = "user-9" }).
		Return(nil)
	mailer.On("SendRecoveryEmail", mock.Anything, "pippin@shire.me", mock.AnythingOfType("string")).Return(nil)

	user, err := svc.AdminAddUser(admin, "pippin", "pippin@shire.me", false)
	require.NoError(t, err)
	assert.Equal(t, "user-9", user.ID)
	assert.Empty(t, user.PasswordHash)
	mailer.AssertCalled(t, "SendRecoveryEmail", mock.Anything, "pippin@shire.me", mock.AnythingOfType("string"))

	_, err = svc.AdminAddUser(authedCtx(&domain.User{ID: "user-1"}), "pippin", "pippin@shire.me", false)
	assert.ErrorIs(t, err, ErrAdminOnly)

	_, err = svc.AdminAddUser(admin, "", "pippin@shire.me", false)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestDeleteUserReapsSessions(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := newTestUserService(userRepo, new(MockSchoolRepository), sessionRepo, new(MockMailer))
	admin := authedCtx(&domain.User{ID: "admin-1", IsAdmin: true})

	userRepo.On("DeleteUser", mock.Anything, "user-2").Return(nil)
	sessionRepo.On("DeleteSessionsByUserID", mock.Anything, "user-2").Return(int64(2), nil)

	require.NoError(t, svc.DeleteUser(admin, "user-2"))
	sessionRepo.AssertCalled(t, "DeleteSessionsByUserID", mock.Anything, "user-2")

	err := svc.DeleteUser(authedCtx(&domain.User{ID: "user-1"}), "user-2")
	assert.ErrorIs(t, err, ErrAdminOnly)
}

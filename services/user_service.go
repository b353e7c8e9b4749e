package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// Profile and password rule violations surfaced to the caller verbatim.
var (
	ErrNotLoggedIn       = errors.New("you need to be logged in")
	ErrAdminOnly         = errors.New("you need to be an admin to perform this action")
	ErrSamePassword      = errors.New("new password cannot be the same")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// tempPasswordLength matches the temporary credentials mailed on recovery.
const tempPasswordLength = 6

// UserService owns profile management, favorites, admin user management and
// password recovery. Authorization is enforced here, from the AuthContext the
// middleware resolved, so every transport gets the same rules.
type UserService struct {
	userRepo    domain.UserRepository
	schoolRepo  domain.SchoolRepository
	sessionRepo domain.SessionRepository
	hasher      PasswordHasher
	mailer      Mailer
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo domain.UserRepository,
	schoolRepo domain.SchoolRepository,
	sessionRepo domain.SessionRepository,
	hasher PasswordHasher,
	mailer Mailer,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		schoolRepo:  schoolRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		mailer:      mailer,
	}
}

// Me returns the authenticated user.
func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	return ac.User, nil
}

// AllUsers lists every account. Admin only.
func (s *UserService) AllUsers(ctx context.Context) ([]*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if !ac.Admin() {
		return nil, ErrAdminOnly
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return users, nil
}

// UpdateInfo updates the caller's own profile fields.
func (s *UserService) UpdateInfo(ctx context.Context, update domain.UserUpdate) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	// The admin flag is not self-service.
	update.IsAdmin = nil

	updated, err := s.userRepo.UpdateUser(ctx, ac.User.ID, update)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// UpdatePassword changes the caller's password after re-verifying the current
// one.
func (s *UserService) UpdatePassword(ctx context.Context, password, newPassword string) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if password == "" || newPassword == "" {
		return nil, fmt.Errorf("%w: password and new password", ErrMissingCredentials)
	}
	if password == newPassword {
		return nil, ErrSamePassword
	}

	// The context user has its hash stripped; re-fetch for the check.
	stored, err := s.userRepo.GetUserByID(ctx, ac.User.ID)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Verify(stored.PasswordHash, password); err != nil {
		return nil, ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, stored.ID, hash); err != nil {
		return nil, err
	}

	log.Info().Str("userID", stored.ID).Msg("Password changed")
	return stored.Sanitized(), nil
}

// AddFavorite adds a school to the caller's favorites. Set semantics: adding
// twice stores one reference.
func (s *UserService) AddFavorite(ctx context.Context, schoolID string) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if schoolID == "" {
		return nil, errors.New("please provide a school ID")
	}
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	updated, err := s.userRepo.AddFavorite(ctx, ac.User.ID, schoolID)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// RemoveFavorite removes a school from the caller's favorites.
func (s *UserService) RemoveFavorite(ctx context.Context, schoolID string) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	updated, err := s.userRepo.RemoveFavorite(ctx, ac.User.ID, schoolID)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// Favorites resolves a user's favorite school references.
func (s *UserService) Favorites(ctx context.Context, user *domain.User) ([]*domain.School, error) {
	if user == nil || len(user.FavoriteIDs) == 0 {
		return []*domain.School{}, nil
	}
	return s.schoolRepo.FindSchoolsByIDs(ctx, user.FavoriteIDs)
}

// RecoverPassword resets the account behind email to a generated temporary
// password and mails it. Public operation, but an unknown email errors so the
// frontend can tell the user.
func (s *UserService) RecoverPassword(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("please provide an email")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return fmt.Errorf("generating temporary password: %w", err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return fmt.Errorf("hashing temporary password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.mailer.SendRecoveryEmail(ctx, email, tempPassword); err != nil {
		return fmt.Errorf("sending recovery email: %w", err)
	}

	log.Info().Str("userID", user.ID).Msg("Recovery email sent")
	return nil
}

// AdminAddUser creates an account with a mailed temporary password. Admin
// only.
func (s *UserService) AdminAddUser(ctx context.Context, username, email string, isAdmin bool) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if !ac.Admin() {
		return nil, ErrAdminOnly
	}
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email", ErrMissingCredentials)
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("generating temporary password: %w", err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing temporary password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		Theme:        domain.DefaultTheme,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendRecoveryEmail(ctx, email, tempPassword); err != nil {
		return nil, fmt.Errorf("sending recovery email: %w", err)
	}

	log.Info().Str("userID", user.ID).Str("addedBy", ac.User.ID).Msg("User added by admin")
	return user.Sanitized(), nil
}

// AdminUpdateUser updates any account, including its admin flag. Admin only.
func (s *UserService) AdminUpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	ac := domain.AuthContextFrom(ctx)
	if id == "" {
		return nil, errors.New("please provide a user ID")
	}
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if !ac.Admin() {
		return nil, ErrAdminOnly
	}

	updated, err := s.userRepo.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// DeleteUser removes an account and its live sessions. Admin only. Reviews
// written by the account keep their owner id; resolvers handle the dangle.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	ac := domain.AuthContextFrom(ctx)
	if id == "" {
		return errors.New("please provide a user ID")
	}
	if !ac.Authenticated() {
		return ErrNotLoggedIn
	}
	if !ac.Admin() {
		return ErrAdminOnly
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}

	// Best effort: in-flight tokens for the deleted user die at the user
	// lookup stage anyway, this just reaps the rows early.
	if n, err := s.sessionRepo.DeleteSessionsByUserID(ctx, id); err != nil {
		log.Warn().Err(err).Str("userID", id).Msg("Failed to delete sessions for removed user")
	} else if n > 0 {
		log.Debug().Int64("sessions", n).Str("userID", id).Msg("Sessions deleted with user")
	}

	log.Info().Str("userID", id).Str("deletedBy", ac.User.ID).Msg("User deleted by admin")
	return nil
}

// UserByID resolves a user reference, e.g. a review owner. The id may dangle
// after an admin deletion; callers translate ErrUserNotFound.
func (s *UserService) UserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = tempPasswordAlphabet[int(b)%len(tempPasswordAlphabet)]
	}
	return string(buf), nil
}

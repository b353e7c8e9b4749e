package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// ErrIncorrectCredentials is returned for both an unknown email and a wrong
// password, so login cannot be used to probe which accounts exist.
var ErrIncorrectCredentials = errors.New("incorrect credentials")

// ErrMissingCredentials is returned when login or registration input is
// incomplete.
var ErrMissingCredentials = errors.New("missing required credentials")

// AuthService owns registration, login and logout. On success, login and
// registration create exactly one session row bound to the issued token; the
// transport layer sets the cookie from the returned result.
type AuthService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	tokens      *TokenService
	hasher      PasswordHasher
	sessionTTL  time.Duration
	now         domain.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	tokens *TokenService,
	hasher PasswordHasher,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		hasher:      hasher,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *AuthService) WithClock(now domain.Clock) *AuthService {
	s.now = now
	return s
}

// LoginResult is handed to the transport layer, which sets the session cookie
// with Max-Age matching ExpiresAt.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account and logs it in. The first session is created
// here so a fresh registration lands authenticated.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*LoginResult, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password", ErrMissingCredentials)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Theme:        domain.DefaultTheme,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("userID", user.ID).Str("username", username).Msg("User registered")
	return s.startSession(ctx, user)
}

// Login checks credentials and opens a new session. A user logging in from a
// second device gets a second, independent session; neither invalidates the
// other.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password", ErrMissingCredentials)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Str("email", email).Msg("Login: unknown email")
			return nil, ErrIncorrectCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		log.Warn().Str("userID", user.ID).Msg("Login: incorrect password")
		return nil, ErrIncorrectCredentials
	}

	return s.startSession(ctx, user)
}

// Logout deletes the session row for the presented token. Deleting an absent
// session is a no-op: double logout, or logout after expiry, still succeeds
// and the caller clears the cookie either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteSessionByToken(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	now := s.now().UTC()
	session := &domain.Session{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.StoreSession(ctx, session); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	log.Debug().Str("userID", user.ID).Time("expiresAt", session.ExpiresAt).Msg("Session created")
	return &LoginResult{
		User:      user.Sanitized(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

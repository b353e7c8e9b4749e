package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/schoolatlas-dev/schoolatlas/domain"
)

// TokenService issues and verifies the signed identity assertions carried in
// the session cookie. It is stateless: whether a token is still honored is
// decided by the session store, not here.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    domain.Clock
}

// NewTokenService creates a TokenService with a process-wide signing secret
// and the token lifetime. Both are fixed for the life of the service.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for expiry tests.
func (s *TokenService) WithClock(now domain.Clock) *TokenService {
	s.now = now
	return s
}

type identityClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the user's username and id. Each call embeds a
// fresh jti, so two tokens for the same user are never byte-identical.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("cannot issue token without a user id")
	}

	now := s.now()
	claims := identityClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claim. Any
// failure (malformed, bad signature, expired, wrong algorithm) maps to
// domain.ErrTokenNotVerified; the cause is wrapped for logging only.
func (s *TokenService) Verify(tokenString string) (domain.TokenClaims, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %w", domain.ErrTokenNotVerified, err)
	}
	if claims.Subject == "" {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing subject", domain.ErrTokenNotVerified)
	}

	return domain.TokenClaims{
		Username: claims.Username,
		UserID:   claims.Subject,
	}, nil
}

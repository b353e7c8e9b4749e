package domain

import "context"

// TokenClaims is the decoded payload of a verified token.
type TokenClaims struct {
	Username string
	UserID   string
}

// AuthContext is the per-request identity resolved by the auth middleware.
// User is nil for anonymous callers; when set, its password hash is stripped.
type AuthContext struct {
	User  *User
	Token string
}

// Authenticated reports whether a user was resolved for this request.
func (a *AuthContext) Authenticated() bool {
	return a != nil && a.User != nil
}

// Admin reports whether the resolved user carries the admin flag.
func (a *AuthContext) Admin() bool {
	return a.Authenticated() && a.User.IsAdmin
}

type authContextKey struct{}

// WithAuthContext attaches the resolved identity to a request context.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthContextFrom extracts the identity placed by the auth middleware.
// Returns an anonymous context when none is present, so downstream code can
// always call Authenticated without nil checks.
func AuthContextFrom(ctx context.Context) *AuthContext {
	if ac, ok := ctx.Value(authContextKey{}).(*AuthContext); ok && ac != nil {
		return ac
	}
	return &AuthContext{}
}

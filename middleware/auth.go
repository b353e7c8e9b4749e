package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/domain"
	"github.com/schoolatlas-dev/schoolatlas/services"
)

// Session resolves the caller's identity from the session cookie and stores
// it on the request context as a domain.AuthContext.
//
// A request without a cookie proceeds anonymously. A request with a cookie
// must pass three checks: the token verifies, a live session row exists for
// it, and the session's user still exists. Failing any of them clears the
// cookie and rejects the request with a single opaque 401, so a caller cannot
// tell which check failed.
func Session(tokens *services.TokenService, sessions domain.SessionRepository, users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				ctx := domain.WithAuthContext(c.Request().Context(), &domain.AuthContext{})
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
			token := cookie.Value

			claims, err := tokens.Verify(token)
			if err != nil {
				return reject(c, err)
			}

			session, err := sessions.GetSessionByToken(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					log.Error().Err(err).Msg("Session lookup failed")
					return err
				}
				return reject(c, err)
			}
			// The repository already filters expired rows; checked again
			// here so a stale row handed over by any store still dies.
			if session.Expired(time.Now()) {
				return reject(c, domain.ErrSessionNotFound)
			}

			user, err := users.GetUserByID(c.Request().Context(), session.UserID)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					log.Error().Err(err).Msg("User lookup failed during authentication")
					return err
				}
				return reject(c, errors.Join(domain.ErrUserNotAuthorized, err))
			}
			if user.ID != claims.UserID {
				return reject(c, domain.ErrUserNotAuthorized)
			}

			ctx := domain.WithAuthContext(c.Request().Context(), &domain.AuthContext{
				User:  user.Sanitized(),
				Token: token,
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// reject clears the session cookie and returns the opaque 401. The cause is
// logged here and nowhere else.
func reject(c echo.Context, cause error) error {
	log.Debug().Err(cause).Str("path", c.Path()).Msg("Rejecting request with invalid session")
	ClearSessionCookie(c)
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrNotAuthorized.Error())
}

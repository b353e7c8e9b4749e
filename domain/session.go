package domain

import "time"

// SessionTTL is the fixed lifetime of a login session. The cookie max-age and
// the session row's expires_at are both derived from it at creation time.
const SessionTTL = 3 * time.Hour

// Session is the server-side record proving a token is still honored. A token
// whose session row is gone (logout, admin revocation, expiry) is rejected no
// matter what its own signature and exp claim say.
type Session struct {
	ID        string    `bson:"_id,omitempty"`
	UserID    string    `bson:"user_id"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Expired reports whether the session is past its expiry. Mongo's TTL reaper
// runs on a delay, so lookups must check this explicitly and treat an expired
// row the same as a missing one.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

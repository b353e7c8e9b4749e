package services

import (
	"context"

	"github.com/schoolatlas-dev/schoolatlas/internal/geocode"
)

// PasswordHasher abstracts password hashing so services can be tested without
// paying bcrypt cost, and so the algorithm can change without touching them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil when password matches hashedPassword.
	Verify(hashedPassword, password string) error
}

// Mailer delivers transactional mail. Implemented by internal/mail.Client.
type Mailer interface {
	SendRecoveryEmail(ctx context.Context, toEmail, tempPassword string) error
}

// Geocoder resolves addresses and zipcodes to coordinates. Implemented by
// internal/geocode.Client.
type Geocoder interface {
	LatLng(ctx context.Context, address, city, state string) (geocode.Location, error)
	ZipcodeLocation(ctx context.Context, zipcode string) (*geocode.ZipcodeLocation, error)
}

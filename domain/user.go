package domain

import "time"

// User represents a registered account in the directory.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Zipcode      string    `bson:"zipcode,omitempty" json:"zipcode"`
	Theme        string    `bson:"theme,omitempty" json:"theme"`
	FavoriteIDs  []string  `bson:"favorite_ids,omitempty" json:"favoriteIds"`
	IsAdmin      bool      `bson:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultTheme is applied to accounts that never picked one.
const DefaultTheme = "lightTheme"

// Sanitized returns a copy safe to hand to resolvers: the password hash is
// stripped so it cannot leak through a context or a response shape.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

// UserUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type UserUpdate struct {
	Username *string
	Email    *string
	Zipcode  *string
	Theme    *string
	IsAdmin  *bool
}

package domain

import "time"

// Review is a single user's rating of a school. Deleting a user does not
// cascade here; the owner id may dangle and resolvers handle that case.
type Review struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	SchoolID  string    `bson:"school_id" json:"schoolId"`
	OwnerID   string    `bson:"owner_id" json:"ownerId"`
	Rating    int       `bson:"rating" json:"rating"`
	Review    string    `bson:"review,omitempty" json:"review"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

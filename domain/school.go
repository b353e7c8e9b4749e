package domain

import "time"

// SchoolImage is an embedded gallery entry on a school document.
type SchoolImage struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt,omitempty" json:"alt"`
}

// School is a directory listing. Most attributes are optional and filled in by
// admins over time; only the name is required at creation.
type School struct {
	ID                     string        `bson:"_id,omitempty" json:"id"`
	Name                   string        `bson:"name" json:"name"`
	Address                string        `bson:"address,omitempty" json:"address"`
	City                   string        `bson:"city,omitempty" json:"city"`
	State                  string        `bson:"state,omitempty" json:"state"`
	Zipcode                string        `bson:"zipcode,omitempty" json:"zipcode"`
	Latitude               float64       `bson:"latitude,omitempty" json:"latitude"`
	Longitude              float64       `bson:"longitude,omitempty" json:"longitude"`
	Phone                  string        `bson:"phone,omitempty" json:"phone"`
	Website                string        `bson:"website,omitempty" json:"website"`
	Email                  string        `bson:"email,omitempty" json:"email"`
	Description            string        `bson:"description,omitempty" json:"description"`
	Rating                 float64       `bson:"rating,omitempty" json:"rating"`
	OffersDaycare          bool          `bson:"offers_daycare,omitempty" json:"offersDaycare"`
	AgeRange               []int         `bson:"age_range,omitempty" json:"ageRange"`
	EarlyEnrollment        bool          `bson:"early_enrollment,omitempty" json:"earlyEnrollment"`
	MinTuition             float64       `bson:"min_tuition,omitempty" json:"minTuition"`
	MaxTuition             float64       `bson:"max_tuition,omitempty" json:"maxTuition"`
	DaysOpen               []string      `bson:"days_open,omitempty" json:"daysOpen"`
	DaysClosed             []string      `bson:"days_closed,omitempty" json:"daysClosed"`
	OpeningHours           string        `bson:"opening_hours,omitempty" json:"openingHours"`
	ClosingHours           string        `bson:"closing_hours,omitempty" json:"closingHours"`
	MinEnrollment          int           `bson:"min_enrollment,omitempty" json:"minEnrollment"`
	MaxEnrollment          int           `bson:"max_enrollment,omitempty" json:"maxEnrollment"`
	MinStudentTeacherRatio float64       `bson:"min_student_teacher_ratio,omitempty" json:"minStudentTeacherRatio"`
	MaxStudentTeacherRatio float64       `bson:"max_student_teacher_ratio,omitempty" json:"maxStudentTeacherRatio"`
	Images                 []SchoolImage `bson:"images,omitempty" json:"images"`
	Avatar                 string        `bson:"avatar,omitempty" json:"avatar"`
	IsVerified             bool          `bson:"is_verified" json:"isVerified"`
	ReviewIDs              []string      `bson:"review_ids,omitempty" json:"reviewIds"`
	CreatedAt              time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time     `bson:"updated_at" json:"updatedAt"`
}

// SchoolUpdate carries the admin-editable attributes. Nil means unchanged.
type SchoolUpdate struct {
	Name                   *string
	Address                *string
	City                   *string
	State                  *string
	Zipcode                *string
	Phone                  *string
	Website                *string
	Email                  *string
	Description            *string
	Rating                 *float64
	OffersDaycare          *bool
	AgeRange               []int
	EarlyEnrollment        *bool
	MinTuition             *float64
	MaxTuition             *float64
	DaysOpen               []string
	DaysClosed             []string
	OpeningHours           *string
	ClosingHours           *string
	MinEnrollment          *int
	MaxEnrollment          *int
	MinStudentTeacherRatio *float64
	MaxStudentTeacherRatio *float64
	Avatar                 *string
	IsVerified             *bool
}

package graph

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/schoolatlas-dev/schoolatlas/domain"
	"github.com/schoolatlas-dev/schoolatlas/middleware"
)

// authPayload is what login and addUser return. The token is also set as the
// session cookie; it is echoed in the body for non-browser clients.
type authPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// NewSchema builds the executable schema against the given resolver.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	latLngType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LatLng",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"northeast": &graphql.Field{Type: latLngType},
			"southwest": &graphql.Field{Type: latLngType},
		},
	})

	locationInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationInfo",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: latLngType},
			"bounds":   &graphql.Field{Type: boundsType},
		},
	})

	schoolImageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SchoolImage",
		Fields: graphql.Fields{
			"url": &graphql.Field{Type: graphql.String},
			"alt": &graphql.Field{Type: graphql.String},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.ID},
			"username":    &graphql.Field{Type: graphql.String},
			"email":       &graphql.Field{Type: graphql.String},
			"zipcode":     &graphql.Field{Type: graphql.String},
			"theme":       &graphql.Field{Type: graphql.String},
			"isAdmin":     &graphql.Field{Type: graphql.Boolean},
			"favoriteIds": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
			"updatedAt":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	schoolType := graphql.NewObject(graphql.ObjectConfig{
		Name: "School",
		Fields: graphql.Fields{
			"id":                     &graphql.Field{Type: graphql.ID},
			"name":                   &graphql.Field{Type: graphql.String},
			"address":                &graphql.Field{Type: graphql.String},
			"city":                   &graphql.Field{Type: graphql.String},
			"state":                  &graphql.Field{Type: graphql.String},
			"zipcode":                &graphql.Field{Type: graphql.String},
			"phone":                  &graphql.Field{Type: graphql.String},
			"website":                &graphql.Field{Type: graphql.String},
			"email":                  &graphql.Field{Type: graphql.String},
			"description":            &graphql.Field{Type: graphql.String},
			"rating":                 &graphql.Field{Type: graphql.Float},
			"offersDaycare":          &graphql.Field{Type: graphql.Boolean},
			"ageRange":               &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"earlyEnrollment":        &graphql.Field{Type: graphql.Boolean},
			"minTuition":             &graphql.Field{Type: graphql.Float},
			"maxTuition":             &graphql.Field{Type: graphql.Float},
			"daysOpen":               &graphql.Field{Type: graphql.NewList(graphql.String)},
			"daysClosed":             &graphql.Field{Type: graphql.NewList(graphql.String)},
			"openingHours":           &graphql.Field{Type: graphql.String},
			"closingHours":           &graphql.Field{Type: graphql.String},
			"minEnrollment":          &graphql.Field{Type: graphql.Int},
			"maxEnrollment":          &graphql.Field{Type: graphql.Int},
			"minStudentTeacherRatio": &graphql.Field{Type: graphql.Float},
			"maxStudentTeacherRatio": &graphql.Field{Type: graphql.Float},
			"images":                 &graphql.Field{Type: graphql.NewList(schoolImageType)},
			"avatar":                 &graphql.Field{Type: graphql.String},
			"isVerified":             &graphql.Field{Type: graphql.Boolean},
			"reviewIds":              &graphql.Field{Type: graphql.NewList(graphql.String)},
			"createdAt":              &graphql.Field{Type: graphql.DateTime},
			"updatedAt":              &graphql.Field{Type: graphql.DateTime},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.ID},
			"schoolId":  &graphql.Field{Type: graphql.String},
			"ownerId":   &graphql.Field{Type: graphql.String},
			"rating":    &graphql.Field{Type: graphql.Int},
			"review":    &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	// Cross-type fields are attached after creation to break the cycle
	// User -> School -> Review -> User.
	userType.AddFieldConfig("favorites", &graphql.Field{
		Type: graphql.NewList(schoolType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := p.Source.(*domain.User)
			if !ok {
				return nil, errors.New("favorites resolved outside a user")
			}
			return r.Users.Favorites(p.Context, user)
		},
	})

	schoolType.AddFieldConfig("latLng", &graphql.Field{
		Type: latLngType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			school, ok := p.Source.(*domain.School)
			if !ok {
				return nil, errors.New("latLng resolved outside a school")
			}
			return r.Schools.LatLng(p.Context, school)
		},
	})

	schoolType.AddFieldConfig("reviews", &graphql.Field{
		Type: graphql.NewList(reviewType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			school, ok := p.Source.(*domain.School)
			if !ok {
				return nil, errors.New("reviews resolved outside a school")
			}
			return r.Schools.Reviews(p.Context, school)
		},
	})

	reviewType.AddFieldConfig("owner", &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			review, ok := p.Source.(*domain.Review)
			if !ok {
				return nil, errors.New("owner resolved outside a review")
			}
			return r.Reviews.Owner(p.Context, review)
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.String},
			"user":  &graphql.Field{Type: userType},
		},
	})

	schoolSearchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SchoolSearch",
		Fields: graphql.Fields{
			"schools":      &graphql.Field{Type: graphql.NewList(schoolType)},
			"locationInfo": &graphql.Field{Type: locationInfoType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.Me(p.Context)
				},
			},
			"allUsers": &graphql.Field{
				Type: graphql.NewList(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.AllUsers(p.Context)
				},
			},
			"school": &graphql.Field{
				Type: schoolType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Schools.SchoolByID(p.Context, stringArg(p, "id"))
				},
			},
			"schools": &graphql.Field{
				Type: schoolSearchType,
				Args: graphql.FieldConfigArgument{
					"zipcode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Schools.SchoolsByZipcode(p.Context, stringArg(p, "zipcode"))
				},
			},
			"allSchools": &graphql.Field{
				Type: graphql.NewList(schoolType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Schools.AllSchools(p.Context)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addUser": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, err := r.Auth.Register(p.Context, stringArg(p, "username"), stringArg(p, "email"), stringArg(p, "password"))
					if err != nil {
						return nil, err
					}
					if c, ok := echoContextFrom(p.Context); ok {
						middleware.SetSessionCookie(c, result.Token, result.ExpiresAt)
					}
					return &authPayload{Token: result.Token, User: result.User}, nil
				},
			},
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					// An already-authenticated caller keeps its session.
					if ac := domain.AuthContextFrom(p.Context); ac.Authenticated() {
						return &authPayload{Token: ac.Token, User: ac.User}, nil
					}
					result, err := r.Auth.Login(p.Context, stringArg(p, "email"), stringArg(p, "password"))
					if err != nil {
						return nil, err
					}
					if c, ok := echoContextFrom(p.Context); ok {
						middleware.SetSessionCookie(c, result.Token, result.ExpiresAt)
					}
					return &authPayload{Token: result.Token, User: result.User}, nil
				},
			},
			"logout": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ac := domain.AuthContextFrom(p.Context)
					if err := r.Auth.Logout(p.Context, ac.Token); err != nil {
						return nil, err
					}
					if c, ok := echoContextFrom(p.Context); ok {
						middleware.ClearSessionCookie(c)
					}
					return true, nil
				},
			},
			"updateUserInfo": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
					"zipcode":  &graphql.ArgumentConfig{Type: graphql.String},
					"theme":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.UpdateInfo(p.Context, domain.UserUpdate{
						Username: stringPtrArg(p, "username"),
						Email:    stringPtrArg(p, "email"),
						Zipcode:  stringPtrArg(p, "zipcode"),
						Theme:    stringPtrArg(p, "theme"),
					})
				},
			},
			"updateUserPassword": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"password":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.UpdatePassword(p.Context, stringArg(p, "password"), stringArg(p, "newPassword"))
				},
			},
			"addToFavorites": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"schoolId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.AddFavorite(p.Context, stringArg(p, "schoolId"))
				},
			},
			"removeFromFavorites": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"schoolId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.RemoveFavorite(p.Context, stringArg(p, "schoolId"))
				},
			},
			"recoverPassword": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Users.RecoverPassword(p.Context, stringArg(p, "email")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"adminAddUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"isAdmin":  &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.AdminAddUser(p.Context, stringArg(p, "username"), stringArg(p, "email"), boolArg(p, "isAdmin"))
				},
			},
			"adminUpdateUserInfo": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
					"zipcode":  &graphql.ArgumentConfig{Type: graphql.String},
					"theme":    &graphql.ArgumentConfig{Type: graphql.String},
					"isAdmin":  &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Users.AdminUpdateUser(p.Context, stringArg(p, "id"), domain.UserUpdate{
						Username: stringPtrArg(p, "username"),
						Email:    stringPtrArg(p, "email"),
						Zipcode:  stringPtrArg(p, "zipcode"),
						Theme:    stringPtrArg(p, "theme"),
						IsAdmin:  boolPtrArg(p, "isAdmin"),
					})
				},
			},
			"deleteUser": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Users.DeleteUser(p.Context, stringArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"addSchool": &graphql.Field{
				Type: schoolType,
				Args: graphql.FieldConfigArgument{
					"name":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"city":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"state":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"zipcode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Schools.AddSchool(p.Context,
						stringArg(p, "name"), stringArg(p, "address"), stringArg(p, "city"),
						stringArg(p, "state"), stringArg(p, "zipcode"))
				},
			},
			"updateSchoolInfo": &graphql.Field{
				Type: schoolType,
				Args: graphql.FieldConfigArgument{
					"id":                     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":                   &graphql.ArgumentConfig{Type: graphql.String},
					"address":                &graphql.ArgumentConfig{Type: graphql.String},
					"city":                   &graphql.ArgumentConfig{Type: graphql.String},
					"state":                  &graphql.ArgumentConfig{Type: graphql.String},
					"zipcode":                &graphql.ArgumentConfig{Type: graphql.String},
					"phone":                  &graphql.ArgumentConfig{Type: graphql.String},
					"website":                &graphql.ArgumentConfig{Type: graphql.String},
					"email":                  &graphql.ArgumentConfig{Type: graphql.String},
					"description":            &graphql.ArgumentConfig{Type: graphql.String},
					"offersDaycare":          &graphql.ArgumentConfig{Type: graphql.Boolean},
					"ageRange":               &graphql.ArgumentConfig{Type: graphql.NewList(graphql.Int)},
					"earlyEnrollment":        &graphql.ArgumentConfig{Type: graphql.Boolean},
					"minTuition":             &graphql.ArgumentConfig{Type: graphql.Float},
					"maxTuition":             &graphql.ArgumentConfig{Type: graphql.Float},
					"daysOpen":               &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"daysClosed":             &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"openingHours":           &graphql.ArgumentConfig{Type: graphql.String},
					"closingHours":           &graphql.ArgumentConfig{Type: graphql.String},
					"minEnrollment":          &graphql.ArgumentConfig{Type: graphql.Int},
					"maxEnrollment":          &graphql.ArgumentConfig{Type: graphql.Int},
					"minStudentTeacherRatio": &graphql.ArgumentConfig{Type: graphql.Float},
					"maxStudentTeacherRatio": &graphql.ArgumentConfig{Type: graphql.Float},
					"avatar":                 &graphql.ArgumentConfig{Type: graphql.String},
					"isVerified":             &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Schools.UpdateSchool(p.Context, stringArg(p, "id"), domain.SchoolUpdate{
						Name:                   stringPtrArg(p, "name"),
						Address:                stringPtrArg(p, "address"),
						City:                   stringPtrArg(p, "city"),
						State:                  stringPtrArg(p, "state"),
						Zipcode:                stringPtrArg(p, "zipcode"),
						Phone:                  stringPtrArg(p, "phone"),
						Website:                stringPtrArg(p, "website"),
						Email:                  stringPtrArg(p, "email"),
						Description:            stringPtrArg(p, "description"),
						OffersDaycare:          boolPtrArg(p, "offersDaycare"),
						AgeRange:               intListArg(p, "ageRange"),
						EarlyEnrollment:        boolPtrArg(p, "earlyEnrollment"),
						MinTuition:             floatPtrArg(p, "minTuition"),
						MaxTuition:             floatPtrArg(p, "maxTuition"),
						DaysOpen:               stringListArg(p, "daysOpen"),
						DaysClosed:             stringListArg(p, "daysClosed"),
						OpeningHours:           stringPtrArg(p, "openingHours"),
						ClosingHours:           stringPtrArg(p, "closingHours"),
						MinEnrollment:          intPtrArg(p, "minEnrollment"),
						MaxEnrollment:          intPtrArg(p, "maxEnrollment"),
						MinStudentTeacherRatio: floatPtrArg(p, "minStudentTeacherRatio"),
						MaxStudentTeacherRatio: floatPtrArg(p, "maxStudentTeacherRatio"),
						Avatar:                 stringPtrArg(p, "avatar"),
						IsVerified:             boolPtrArg(p, "isVerified"),
					})
				},
			},
			"deleteSchool": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Schools.DeleteSchool(p.Context, stringArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"addReview": &graphql.Field{
				Type: reviewType,
				Args: graphql.FieldConfigArgument{
					"rating":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"review":   &graphql.ArgumentConfig{Type: graphql.String},
					"schoolId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Reviews.AddReview(p.Context, intArg(p, "rating"), stringArg(p, "review"), stringArg(p, "schoolId"))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/domain"
	"github.com/schoolatlas-dev/schoolatlas/internal/geocode"
)

// SchoolService owns listing lookups and admin-managed listing mutations.
type SchoolService struct {
	schoolRepo domain.SchoolRepository
	reviewRepo domain.ReviewRepository
	geocoder   Geocoder
}

// NewSchoolService creates a new SchoolService.
func NewSchoolService(
	schoolRepo domain.SchoolRepository,
	reviewRepo domain.ReviewRepository,
	geocoder Geocoder,
) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		reviewRepo: reviewRepo,
		geocoder:   geocoder,
	}
}

// SchoolSearch is the result of a zipcode search: the matching listings plus
// the geocoded geometry the client frames the map with.
type SchoolSearch struct {
	Schools      []*domain.School
	LocationInfo *geocode.ZipcodeLocation
}

// SchoolByID returns one listing.
func (s *SchoolService) SchoolByID(ctx context.Context, id string) (*domain.School, error) {
	if id == "" {
		return nil, errors.New("please provide an ID")
	}
	return s.schoolRepo.GetSchoolByID(ctx, id)
}

// SchoolsByZipcode searches listings by zipcode. An empty zipcode returns an
// empty result without touching the geocoder. A geocoder failure degrades to
// results without map geometry rather than failing the search.
func (s *SchoolService) SchoolsByZipcode(ctx context.Context, zipcode string) (*SchoolSearch, error) {
	if zipcode == "" {
		return &SchoolSearch{Schools: []*domain.School{}}, nil
	}

	schools, err := s.schoolRepo.FindSchoolsByZipcode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	locationInfo, err := s.geocoder.ZipcodeLocation(ctx, zipcode)
	if err != nil {
		log.Warn().Err(err).Str("zipcode", zipcode).Msg("Zipcode geocoding failed, returning schools without location info")
		return &SchoolSearch{Schools: schools}, nil
	}

	return &SchoolSearch{Schools: schools, LocationInfo: locationInfo}, nil
}

// AllSchools returns every listing.
func (s *SchoolService) AllSchools(ctx context.Context) ([]*domain.School, error) {
	return s.schoolRepo.ListSchools(ctx)
}

// SchoolsByIDs resolves a list of school references, e.g. favorites.
func (s *SchoolService) SchoolsByIDs(ctx context.Context, ids []string) ([]*domain.School, error) {
	if len(ids) == 0 {
		return []*domain.School{}, nil
	}
	return s.schoolRepo.FindSchoolsByIDs(ctx, ids)
}

// LatLng geocodes a school's street address on demand.
func (s *SchoolService) LatLng(ctx context.Context, school *domain.School) (geocode.Location, error) {
	if school == nil {
		return geocode.Location{}, errors.New("no school to geocode")
	}
	// Stored coordinates win over a geocoder round trip.
	if school.Latitude != 0 || school.Longitude != 0 {
		return geocode.Location{Lat: school.Latitude, Lng: school.Longitude}, nil
	}
	return s.geocoder.LatLng(ctx, school.Address, school.City, school.State)
}

// Reviews resolves a school's review references.
func (s *SchoolService) Reviews(ctx context.Context, school *domain.School) ([]*domain.Review, error) {
	if school == nil || len(school.ReviewIDs) == 0 {
		return []*domain.Review{}, nil
	}
	return s.reviewRepo.FindReviewsByIDs(ctx, school.ReviewIDs)
}

// AddSchool creates a listing. Admin only; the basic address fields are all
// required so the listing is locatable from day one.
func (s *SchoolService) AddSchool(ctx context.Context, name, address, city, state, zipcode string) (*domain.School, error) {
	ac := domain.AuthContextFrom(ctx)
	if name == "" || address == "" || city == "" || state == "" || zipcode == "" {
		return nil, errors.New("you need to provide a name, address, city, state, and zipcode")
	}
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if !ac.Admin() {
		return nil, ErrAdminOnly
	}

	school := &domain.School{
		Name:    name,
		Address: address,
		City:    city,
		State:   state,
		Zipcode: zipcode,
	}
	if err := s.schoolRepo.CreateSchool(ctx, school); err != nil {
		return nil, err
	}

	log.Info().Str("schoolID", school.ID).Str("addedBy", ac.User.ID).Msg("School added")
	return school, nil
}

// UpdateSchool updates a listing's attributes. Admin only.
func (s *SchoolService) UpdateSchool(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	ac := domain.AuthContextFrom(ctx)
	if id == "" {
		return nil, errors.New("please provide a school ID")
	}
	if !ac.Authenticated() {
		return nil, ErrNotLoggedIn
	}
	if !ac.Admin() {
		return nil, ErrAdminOnly
	}

	updated, err := s.schoolRepo.UpdateSchool(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSchool removes a listing. Admin only.
func (s *SchoolService) DeleteSchool(ctx context.Context, id string) error {
	ac := domain.AuthContextFrom(ctx)
	if id == "" {
		return errors.New("please provide a school ID")
	}
	if !ac.Authenticated() {
		return ErrNotLoggedIn
	}
	if !ac.Admin() {
		return ErrAdminOnly
	}

	if err := s.schoolRepo.DeleteSchool(ctx, id); err != nil {
		return err
	}

	log.Info().Str("schoolID", id).Str("deletedBy", ac.User.ID).Msg("School deleted")
	return nil
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/cache"
)

// DefaultBaseURL is the Google Maps Geocoding API endpoint. Overridable for
// tests.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a viewport around a geocoded area.
type Bounds struct {
	Northeast Location `json:"northeast"`
	Southwest Location `json:"southwest"`
}

// ZipcodeLocation is the geometry returned for a zipcode query: a center
// point plus the viewport the client should frame.
type ZipcodeLocation struct {
	Location Location `json:"location"`
	Bounds   Bounds   `json:"bounds"`
}

// ErrNoResults is returned when the API answers successfully but finds
// nothing for the query.
var ErrNoResults = fmt.Errorf("geocode: no results for query")

// Client calls the Google Maps Geocoding API. Answers are cached: addresses
// do not move and the API is billed per request.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      cache.GeocodeCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// NewClient creates a geocoding client. geocodeCache may not be nil.
func NewClient(apiKey string, geocodeCache cache.GeocodeCache, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      geocodeCache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geometry mirrors the slice of the Google response we care about.
type geometry struct {
	Location Location `json:"location"`
	Bounds   Bounds   `json:"bounds"`
	Viewport Bounds   `json:"viewport"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

// LatLng geocodes a street address to a point.
func (c *Client) LatLng(ctx context.Context, address, city, state string) (Location, error) {
	query := strings.TrimSpace(strings.Join([]string{address, city, state}, " "))
	if query == "" {
		return Location{}, fmt.Errorf("geocode: empty address")
	}

	geo, err := c.lookup(ctx, query)
	if err != nil {
		return Location{}, err
	}
	return geo.Location, nil
}

// ZipcodeLocation geocodes a zipcode to its center and viewport.
func (c *Client) ZipcodeLocation(ctx context.Context, zipcode string) (*ZipcodeLocation, error) {
	if zipcode == "" {
		return nil, fmt.Errorf("geocode: empty zipcode")
	}

	geo, err := c.lookup(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	bounds := geo.Bounds
	if bounds == (Bounds{}) {
		// Zipcode results sometimes carry only a viewport.
		bounds = geo.Viewport
	}
	return &ZipcodeLocation{Location: geo.Location, Bounds: bounds}, nil
}

func (c *Client) lookup(ctx context.Context, query string) (*geometry, error) {
	if entry, ok := c.cache.Get(ctx, query); ok {
		var geo geometry
		if err := json.Unmarshal(entry.Payload, &geo); err == nil {
			return &geo, nil
		}
		// Undecodable entry: fall through to the API and overwrite it.
		_ = c.cache.Delete(ctx, query)
	}

	reqURL := fmt.Sprintf("%s?address=%s&key=%s", c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocode: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geocode: decoding response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: %q (status %s)", ErrNoResults, query, parsed.Status)
	}

	geo := parsed.Results[0].Geometry

	payload, err := json.Marshal(geo)
	if err == nil {
		if cacheErr := c.cache.Set(ctx, &cache.GeocodeEntry{
			Query:    query,
			Payload:  payload,
			CachedAt: time.Now().UTC(),
		}); cacheErr != nil {
			log.Warn().Err(cacheErr).Str("query", query).Msg("Failed to cache geocode result")
		}
	}

	return &geo, nil
}

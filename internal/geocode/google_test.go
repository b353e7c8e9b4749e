package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolatlas-dev/schoolatlas/cache"
)

const addressResponse = `{
	"status": "OK",
	"results": [{
		"geometry": {
			"location": {"lat": 45.512, "lng": -122.658}
		}
	}]
}`

const zipcodeResponse = `{
	"status": "OK",
	"results": [{
		"geometry": {
			"location": {"lat": 45.51, "lng": -122.66},
			"bounds": {
				"northeast": {"lat": 45.53, "lng": -122.64},
				"southwest": {"lat": 45.49, "lng": -122.68}
			}
		}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	geocodeCache := cache.NewMemoryGeocodeCache(time.Minute)
	t.Cleanup(geocodeCache.Close)

	client := NewClient("test-key", geocodeCache,
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	return client, server
}

func TestLatLng(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, addressResponse)
	})

	loc, err := client.LatLng(context.Background(), "1005 W Burnside St", "Portland", "OR")
	require.NoError(t, err)

	assert.Equal(t, "1005 W Burnside St Portland OR", gotQuery)
	assert.InDelta(t, 45.512, loc.Lat, 1e-9)
	assert.InDelta(t, -122.658, loc.Lng, 1e-9)
}

func TestZipcodeLocation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, zipcodeResponse)
	})

	zl, err := client.ZipcodeLocation(context.Background(), "97205")
	require.NoError(t, err)

	assert.InDelta(t, 45.51, zl.Location.Lat, 1e-9)
	assert.InDelta(t, 45.53, zl.Bounds.Northeast.Lat, 1e-9)
	assert.InDelta(t, -122.68, zl.Bounds.Southwest.Lng, 1e-9)
}

func TestLookupUsesCache(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, addressResponse)
	})

	for range 3 {
		_, err := client.LatLng(context.Background(), "1005 W Burnside St", "Portland", "OR")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), calls.Load(), "repeat queries must be served from cache")
}

func TestNoResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	})

	_, err := client.ZipcodeLocation(context.Background(), "00000")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.LatLng(context.Background(), "anywhere", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	_, err := client.LatLng(context.Background(), "", "", "")
	require.Error(t, err)
	_, err = client.ZipcodeLocation(context.Background(), "")
	require.Error(t, err)
}

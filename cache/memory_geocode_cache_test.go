package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGeocodeCacheRoundTrip(t *testing.T) {
	c := NewMemoryGeocodeCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "97201")
	assert.False(t, ok)

	entry := &GeocodeEntry{
		Query:    "97201",
		Payload:  []byte(`{"lat":45.5,"lng":-122.7}`),
		CachedAt: time.Now(),
	}
	require.NoError(t, c.Set(ctx, entry))

	got, ok := c.Get(ctx, "97201")
	require.True(t, ok)
	assert.Equal(t, entry.Payload, got.Payload)

	require.NoError(t, c.Delete(ctx, "97201"))
	_, ok = c.Get(ctx, "97201")
	assert.False(t, ok)
}

func TestMemoryGeocodeCacheExpiry(t *testing.T) {
	c := NewMemoryGeocodeCache(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &GeocodeEntry{Query: "q", Payload: []byte(`{}`)}))

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "q")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestHashQueryStable(t *testing.T) {
	assert.Equal(t, HashQuery("main st portland or"), HashQuery("main st portland or"))
	assert.NotEqual(t, HashQuery("a"), HashQuery("b"))
}

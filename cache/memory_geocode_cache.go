package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryGeocodeCache implements GeocodeCache using ttlcache.
type MemoryGeocodeCache struct {
	cache *ttlcache.Cache[string, *GeocodeEntry]
}

// NewMemoryGeocodeCache creates an in-memory geocode cache whose entries
// expire after ttl.
func NewMemoryGeocodeCache(ttl time.Duration) *MemoryGeocodeCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *GeocodeEntry](ttl),
		ttlcache.WithDisableTouchOnHit[string, *GeocodeEntry](),
	)

	// Start the expiry sweeper.
	go cache.Start()

	return &MemoryGeocodeCache{cache: cache}
}

// Set implements GeocodeCache.Set.
func (c *MemoryGeocodeCache) Set(_ context.Context, entry *GeocodeEntry) error {
	c.cache.Set(HashQuery(entry.Query), entry, ttlcache.DefaultTTL)
	return nil
}

// Get implements GeocodeCache.Get.
func (c *MemoryGeocodeCache) Get(_ context.Context, query string) (*GeocodeEntry, bool) {
	item := c.cache.Get(HashQuery(query))
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Delete implements GeocodeCache.Delete.
func (c *MemoryGeocodeCache) Delete(_ context.Context, query string) error {
	c.cache.Delete(HashQuery(query))
	return nil
}

// Close stops the expiry sweeper.
func (c *MemoryGeocodeCache) Close() {
	c.cache.Stop()
}

var _ GeocodeCache = (*MemoryGeocodeCache)(nil)

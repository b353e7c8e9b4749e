package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// GeocodeEntry is one cached geocoding answer, stored as the raw JSON geometry
// so the cache does not depend on the geocode package's types.
type GeocodeEntry struct {
	Query    string    `json:"query"`
	Payload  []byte    `json:"payload"`
	CachedAt time.Time `json:"cached_at"`
}

// GeocodeCache stores geocoding results keyed by query. The upstream API is
// rate-limited and billed per call and addresses do not move, so long TTLs
// are fine. Implementations: in-memory ttlcache, redis.
type GeocodeCache interface {
	Set(ctx context.Context, entry *GeocodeEntry) error
	Get(ctx context.Context, query string) (*GeocodeEntry, bool)
	Delete(ctx context.Context, query string) error
	Close()
}

// HashQuery hashes a geocode query into a fixed-length cache key.
func HashQuery(query string) string {
	hasher := sha256.New()
	hasher.Write([]byte(query))
	return hex.EncodeToString(hasher.Sum(nil))
}

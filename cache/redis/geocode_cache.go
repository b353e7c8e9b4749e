package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/cache"
)

// GeocodeCache implements cache.GeocodeCache backed by Redis, for deployments
// running more than one API replica: a geocode answer fetched by one replica
// is visible to the rest.
type GeocodeCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewGeocodeCache creates a new redis-backed geocode cache.
func NewGeocodeCache(client *redis.Client, prefix string, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *GeocodeCache) redisKey(query string) string {
	return fmt.Sprintf("%s:geocode:%s", r.prefix, cache.HashQuery(query))
}

// Set stores a geocode entry with the configured TTL.
func (r *GeocodeCache) Set(ctx context.Context, entry *cache.GeocodeEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geocode entry: %w", err)
	}
	if err := r.client.Set(ctx, r.redisKey(entry.Query), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set geocode entry in redis: %w", err)
	}
	return nil
}

// Get retrieves a geocode entry; a miss or a decode failure both report false.
func (r *GeocodeCache) Get(ctx context.Context, query string) (*cache.GeocodeEntry, bool) {
	raw, err := r.client.Get(ctx, r.redisKey(query)).Bytes()
	if err != nil {
		return nil, false
	}

	var entry cache.GeocodeEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Dropping undecodable geocode cache entry")
		_ = r.client.Del(ctx, r.redisKey(query)).Err()
		return nil, false
	}
	return &entry, true
}

// Delete removes a geocode entry.
func (r *GeocodeCache) Delete(ctx context.Context, query string) error {
	return r.client.Del(ctx, r.redisKey(query)).Err()
}

// Close is a no-op; the redis client is owned by the caller.
func (r *GeocodeCache) Close() {}

var _ cache.GeocodeCache = (*GeocodeCache)(nil)

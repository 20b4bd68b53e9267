// Package geocache caches geocoding results keyed by raw location string.
// The aggregation pipeline geocodes upstream; rows that arrive without
// coordinates get one last chance to resolve from the cache before the
// validity gate drops them.
package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache resolves a location string to coordinates. Lookup misses are not
// errors; err is reserved for backend failures.
type Cache interface {
	Lookup(ctx context.Context, location string) (lat, lng float64, ok bool, err error)
	Store(ctx context.Context, location string, lat, lng float64) error
}

// normalizeKey folds case and whitespace so "San Francisco, CA " and
// "san francisco, ca" share an entry.
func normalizeKey(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}

// MemoryCache is a process-local Cache for tests and redis-less deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][2]float64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][2]float64)}
}

func (c *MemoryCache) Lookup(_ context.Context, location string) (float64, float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coords, ok := c.entries[normalizeKey(location)]
	return coords[0], coords[1], ok, nil
}

func (c *MemoryCache) Store(_ context.Context, location string, lat, lng float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[normalizeKey(location)] = [2]float64{lat, lng}
	return nil
}

// RedisCache stores entries under geo:-prefixed keys as small JSON blobs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

const keyPrefix = "geo:"

// NewRedisCache parses redisURL, verifies connectivity, and returns a cache
// with the given entry TTL (0 means no expiry).
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

type cachedCoords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *RedisCache) Lookup(ctx context.Context, location string) (float64, float64, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+normalizeKey(location)).Result()
	if err == redis.Nil {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocache get: %w", err)
	}

	var coords cachedCoords
	if err := json.Unmarshal([]byte(raw), &coords); err != nil {
		// Corrupt entry: treat as a miss rather than poisoning the pipeline.
		return 0, 0, false, nil
	}
	return coords.Lat, coords.Lng, true, nil
}

func (c *RedisCache) Store(ctx context.Context, location string, lat, lng float64) error {
	raw, err := json.Marshal(cachedCoords{Lat: lat, Lng: lng})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, keyPrefix+normalizeKey(location), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Package cache stores derived media metadata (probed image sizes, EXIF
// exposure data, audio tags) so repeated gallery loads skip decoding.
//
// Backends:
//   - [FileCache]: one JSON file per entry, the default for a single host
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store for deployments already running MongoDB
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so every backend sees the same key space.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and unmarshals it into v.
// A corrupt entry is deleted and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Package cache stores generated patterns and artifacts between runs.
//
// # Backends
//
//   - [FileCache]: zstd-compressed entries on local disk, used by the CLI
//   - [RedisCache]: shared entries in Redis, used by the HTTP server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives keys from content hashes and the options that affect
// the output, so changing the image, the catalog or any generation
// parameter produces a different key:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.PatternKey(cache.Hash(imageBytes), cache.PatternKeyOpts{Colors: 24})
//
// [NewScopedKeyer] prefixes every key, which keeps several deployments
// apart in one Redis instance.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. Backends treat a
// corrupt entry as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	// TTLPattern applies to generated grids. Generation is deterministic,
	// so entries only expire to bound disk use.
	TTLPattern = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered outputs.
	TTLArtifact = 7 * 24 * time.Hour
)

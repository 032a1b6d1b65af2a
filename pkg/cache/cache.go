// Package cache stores derived artifacts between runs.
//
// The routing pipeline caches decoded cost fields (downsampling a desktop
// image is the slowest step of a CLI run) and rendered artifacts for the
// preview server. Entries are opaque byte slices addressed by keys built by
// a [Keyer].
//
// Two implementations are provided:
//   - [FileCache] for the CLI, one file per entry under a directory
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLField covers decoded cost fields. The source image is part of the
	// key, so a stale entry can only be served for an unchanged image.
	TTLField = 7 * 24 * time.Hour

	// TTLArtifact covers rendered outputs.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-slice key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss
	// (false) without an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// NullCache stores nothing; every Get misses. It backs --no-cache runs.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Package cache stores generated artifacts keyed by the inputs that produced them.
//
// Only seeded strikes are cacheable: an unseeded strike draws a fresh seed
// and its output can never be requested again.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: hash-sharded files for the CLI
//   - [RedisCache]: shared cache for API deployments
//   - [MongoCache]: shared cache with TTL index expiry
//
// Keys are built by a [Keyer] so every caller derives the same key from the
// same inputs.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the artifact lifetime used when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

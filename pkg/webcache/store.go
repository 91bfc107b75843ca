package webcache

import (
	"context"
	"time"
)

// Store persists serialized HTTP responses until they expire. Implementations
// own expiry: an expired entry is reported as missing, never returned.
type Store interface {
	// Get returns the entry stored under key. The boolean reports whether
	// a live entry was found; expired entries count as missing.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry stored under key, if any.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

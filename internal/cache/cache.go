// Package cache provides the read-through lookup cache used for hot hashed
// lookups (token by value, client by id). Values are CBOR encoded.
//
// Entries derived from mutable state must be invalidated synchronously by the
// writer that changes that state; TTL expiry is only a backstop. Where a
// reader may race a writer, the entry key embeds a generation counter the
// writer bumps after commit, so a read computed from pre-commit rows lands
// under a generation no later reader consults.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores encoded lookup results under string keys.
type Cache interface {
	// Get decodes the value under key into dest. The boolean is false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl. A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Counter returns the integer stored under key, or zero when it is unset.
	Counter(ctx context.Context, key string) (int64, error)

	// Incr atomically increments every counter in keys. Counters never expire.
	Incr(ctx context.Context, keys ...string) error

	// Ping checks connectivity for the readiness endpoint.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}

// Key joins parts with ':' into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

type noopCache struct{}

// NewNoopCache returns a Cache that never stores anything, used when caching is disabled.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error               { return nil }
func (noopCache) Counter(context.Context, string) (int64, error)        { return 0, nil }
func (noopCache) Incr(context.Context, ...string) error                 { return nil }
func (noopCache) Ping(context.Context) error                            { return nil }
func (noopCache) Close() error                                          { return nil }

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/idcore/internal/codec"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string
	// KeyPrefix namespaces every key, e.g. "idcore:".
	KeyPrefix string
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration
}

// RedisCache implements Cache on top of a go-redis client.
type RedisCache struct {
	client     redis.UniversalClient
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg.KeyPrefix, cfg.DefaultTTL), nil
}

// NewRedisCacheWithClient creates a RedisCache with a pre-configured client.
func NewRedisCacheWithClient(client redis.UniversalClient, keyPrefix string, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &RedisCache{
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
	}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := codec.Unmarshal(data, dest); err != nil {
		// An undecodable entry is dropped and treated as a miss.
		_ = r.client.Del(ctx, r.keyPrefix+key).Err()
		return false, nil
	}
	return true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete implements Cache.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.keyPrefix + k
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return nil
}

// Counter implements Cache.
func (r *RedisCache) Counter(ctx context.Context, key string) (int64, error) {
	value, err := r.client.Get(ctx, r.keyPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache counter: %w", err)
	}
	return value, nil
}

// Incr implements Cache. The increments run in one MULTI/EXEC block.
func (r *RedisCache) Incr(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, r.keyPrefix+k)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment cache counters: %w", err)
	}
	return nil
}

// Ping implements Cache.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Cache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

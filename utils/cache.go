package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/config"
)

const (
	// DefaultCacheTTL applies when a caller passes a non-positive ttl.
	DefaultCacheTTL = 300 * time.Second

	cacheOpTimeout = 2 * time.Second
)

// ErrCacheCorrupt marks a cached value that no longer decodes.
var ErrCacheCorrupt = errors.New("cache entry corrupt")

// Cache is a non-authoritative TTL key-value store. Any entry may be stale
// or missing at any time.
type Cache interface {
	// Get returns the value and true on a hit, false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete is idempotent: removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by caches backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostsCacheKey is the listing key for one user's posts.
func PostsCacheKey(userID uint) string {
	return "posts:" + strconv.FormatUint(uint64(userID), 10)
}

// NewCache builds the cache selected by cfg.CacheDriver.
func NewCache(cfg config.AppConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.CacheDriver {
	case "redis", "":
		rc := NewRedisClient(cfg)
		if err := PingRedis(context.Background(), rc); err != nil {
			// The cache is optional for correctness; keep the client and let calls degrade.
			logger.Warn("redis ping failed", zap.String("addr", rc.Options().Addr), zap.Error(err))
		}
		return NewRedisCache(rc), nil
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}

// RedisCache implements Cache over go-redis.
type RedisCache struct {
	rc *redis.Client
}

// NewRedisCache wraps a Redis client.
func NewRedisCache(rc *redis.Client) *RedisCache {
	return &RedisCache{rc: rc}
}

// Client exposes the underlying client for lifecycle management.
func (c *RedisCache) Client() *redis.Client { return c.rc }

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return PingRedis(ctx, c.rc)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.rc.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.rc.Del(ctx, key).Err()
}

// MemoryCache implements Cache in process. It is only coherent within a
// single instance and suits local development.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(DefaultCacheTTL, time.Minute)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemoryCache) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	m.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// CacheGetJSON decodes a cached JSON value into out. A value that fails to
// decode reports ErrCacheCorrupt alongside hit=false.
func CacheGetJSON(ctx context.Context, c Cache, key string, out interface{}) (bool, error) {
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCacheCorrupt, key, err)
	}
	return true, nil
}

// CacheSetJSON marshals v and stores the JSON bytes.
func CacheSetJSON(ctx context.Context, c Cache, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetWithTTL(ctx, key, b, ttl)
}

package cachedexpander

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/go-redis/cache/v8"

	"github.com/urlexpand/urlexpand"
)

// Bump to invalidate all existing cache entries after a change to the
// Result structure or resolution semantics.
const redisCacheVersion = "1"

// Cache is a generic cache interface.
type Cache interface {
	Add(ctx context.Context, key string, value urlexpand.Result)
	Get(ctx context.Context, key string) (value urlexpand.Result, ok bool)
	Name() string
}

// RedisCache caches results in redis.
type RedisCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ Cache = &RedisCache{} // RedisCache implements Cache

// NewRedisCache creates a new RedisCache whose entries will expire
// after the given TTL.
func NewRedisCache(cache *cache.Cache, ttl time.Duration) *RedisCache {
	return &RedisCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Add adds a Result to the cache.
func (c *RedisCache) Add(ctx context.Context, key string, value urlexpand.Result) {
	// Cache write failures are invisible to callers; the result is
	// simply resolved again next time.
	_ = c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisCacheKey(key),
		Value: value,
		TTL:   c.ttl,
	})
}

// Get gets a Result from the cache, returning a bool indicating
// whether it was present.
func (c *RedisCache) Get(ctx context.Context, key string) (urlexpand.Result, bool) {
	var result urlexpand.Result
	if err := c.cache.Get(ctx, redisCacheKey(key), &result); err != nil {
		return urlexpand.Result{}, false
	}
	return result, true
}

// Name returns the name of the cache, for instrumentation purposes.
func (c *RedisCache) Name() string {
	return "redis"
}

func redisCacheKey(key string) string {
	return fmt.Sprintf("cache:%s:%x", redisCacheVersion, sha256.Sum256([]byte(key)))
}

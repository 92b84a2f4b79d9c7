package cache

import (
	"context"
	"time"

	goRedis "github.com/go-redis/redis/v8"
	"github.com/valkey-io/valkey-go"

	"github.com/JunMin765677/wallet-server/internal/config"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/redis"
)

const (
	ForEver = 0 * time.Second // ForEver It can be cached forever
)

// Cache interface propose an interface that any cache should adhere
type Cache interface {
	// Set sets a value in the caches accessible by the key. The ttl param is the maximum time to live in the cache
	// a ttl=0 means that the entry could be cached forever
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get searches for a non expired entry in the cache and returns the result in the value variable sent as reference and a found paramenter. You should only trust the returned value if f is true
	Get(ctx context.Context, key string, value any) bool
	// Exists tells whether a key exists in the cache with a valid ttl
	Exists(ctx context.Context, key string) bool
	// Delete removes an entry from the cache.
	Delete(ctx context.Context, key string) error
}

// NewCacheClient - creates a new cache client based on the configuration. When
// the provider is redis the underlying client is also returned so callers can
// register it with the health checker; it is nil for other providers.
func NewCacheClient(ctx context.Context, cfg config.Configuration) (Cache, *goRedis.Client, error) {
	switch cfg.Cache.Provider {
	case config.CacheProviderRedis:
		rdb, err := redis.Open(ctx, cfg.Cache.RedisUrl)
		if err != nil {
			log.Error(ctx, "cannot connect to redis", "err", err, "host", cfg.Cache.RedisUrl)
			return nil, nil, err
		}
		return NewRedisCache(rdb), rdb, nil
	case config.CacheProviderValKey:
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.Cache.RedisUrl}})
		if err != nil {
			log.Error(ctx, "cannot connect to valkey", "err", err, "host", cfg.Cache.RedisUrl)
			return nil, nil, err
		}
		return NewValKeyCache(client), nil, nil
	default:
		log.Warn(ctx, "no cache provider configured, using in memory cache")
		return NewMemoryCache(), nil, nil
	}
}

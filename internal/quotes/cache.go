package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache stores one price entry per symbol with a fixed freshness
// window. It is checked explicitly before any external price query;
// entries older than the TTL are treated as absent.
type Cache interface {
	Get(ctx context.Context, symbol string) (decimal.Decimal, bool)
	Set(ctx context.Context, symbol string, price decimal.Decimal)
}

type memoryEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// MemoryCache is the in-process cache implementation
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates a cache with the given TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached price for symbol if it is still fresh
func (c *MemoryCache) Get(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	if !ok {
		return decimal.Zero, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		delete(c.entries, symbol)
		return decimal.Zero, false
	}
	return entry.price, true
}

// Set stores a price with the current fetch timestamp
func (c *MemoryCache) Set(ctx context.Context, symbol string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = memoryEntry{price: price, fetchedAt: c.now()}
}

const redisKeyPrefix = "quote:"

// RedisCache backs the price cache with Redis so multiple instances
// share one freshness window per symbol
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache with the given TTL
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached price for symbol if the key has not expired
func (c *RedisCache) Get(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+symbol).Result()
	if err != nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

// Set stores a price under the symbol key with the cache TTL
func (c *RedisCache) Set(ctx context.Context, symbol string, price decimal.Decimal) {
	c.client.Set(ctx, redisKeyPrefix+symbol, price.String(), c.ttl)
}

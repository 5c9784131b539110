package inventory

import (
	"context"
	"encoding/json"
	"time"

	"outbound_messaging_backend/platform/config"
	"outbound_messaging_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "outbound:inventory:senders"

// Cache fronts the provider with a short-lived Redis entry so rapid panel
// open/close cycles do not re-enumerate the whole account. A nil *Cache is
// a no-op, matching the disabled configuration.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewCache creates the inventory cache, or nil when Redis is not configured.
func NewCache(cfg config.RedisConfig, log *logger.Logger) *Cache {
	if !cfg.IsInventoryCacheEnabled() {
		return nil
	}

	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		}),
		ttl: cfg.GetInventoryCacheTTL(),
		log: log,
	}
}

// Get returns the cached sender list, if any. Cache errors degrade to a
// miss; the provider remains the source of truth.
func (c *Cache) Get(ctx context.Context) ([]SenderNumber, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("inventory cache read failed", "error", err.Error())
		}
		return nil, false
	}

	var senders []SenderNumber
	if err := json.Unmarshal(data, &senders); err != nil {
		c.log.Warn("inventory cache entry corrupt", "error", err.Error())
		return nil, false
	}
	return senders, true
}

// Set stores the sender list with the configured TTL.
func (c *Cache) Set(ctx context.Context, senders []SenderNumber) {
	if c == nil {
		return
	}

	data, err := json.Marshal(senders)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("inventory cache write failed", "error", err.Error())
	}
}

// Invalidate drops the cached entry. Exposed for operational endpoints and
// tests.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
		c.log.Warn("inventory cache invalidate failed", "error", err.Error())
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

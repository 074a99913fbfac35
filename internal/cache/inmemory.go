package cache

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	goCache "github.com/patrickmn/go-cache"
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
)

// DefaultExpiration is used when the configuration does not set a ttl
const DefaultExpiration = 5 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache.
// Every call is a no-op when caching is disabled.
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// NewInMemoryCache creates the process wide cache
func NewInMemoryCache(cfg *config.Configuration, log *logger.Logger) Cache {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = DefaultExpiration
	}

	log.Infow("initializing cache", "enabled", cfg.Cache.Enabled, "ttl", ttl)
	return &InMemoryCache{
		cache:   goCache.New(ttl, 2*ttl),
		enabled: cfg.Cache.Enabled,
	}
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}

	span := startCacheSpan(ctx, "get", key)
	defer finishSpan(span)

	value, ok := c.cache.Get(key)
	if span != nil {
		span.SetData("hit", ok)
	}
	return value, ok
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	if !c.enabled {
		return
	}
	c.cache.Delete(key)
}

// DeleteByPrefix removes all keys with the given prefix
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	if !c.enabled {
		return
	}
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	if !c.enabled {
		return
	}
	c.cache.Flush()
}

// startCacheSpan returns nil if Sentry is not available in the context
func startCacheSpan(ctx context.Context, operation string, key string) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache.inmemory."+operation)
	span.Description = "cache.inmemory." + operation
	span.Op = "db.cache"
	span.SetData("key", key)
	return span
}

func finishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCache(enabled bool) Cache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	cfg.Cache.TTL = time.Minute
	return NewInMemoryCache(cfg, logger.NewNoopLogger())
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and deletes values", func(t *testing.T) {
		c := newTestCache(true)
		key := GenerateKey(PrefixPackage, "pkg_1")
		assert.Equal(t, "package:v1::pkg_1", key)

		c.Set(ctx, key, "value", 0)
		got, ok := c.Get(ctx, key)
		assert.True(t, ok)
		assert.Equal(t, "value", got)

		c.Delete(ctx, key)
		_, ok = c.Get(ctx, key)
		assert.False(t, ok)
	})

	t.Run("deletes by prefix only", func(t *testing.T) {
		c := newTestCache(true)
		c.Set(ctx, GenerateKey(PrefixPackage, "a"), 1, 0)
		c.Set(ctx, GenerateKey(PrefixPackage, "b"), 2, 0)
		c.Set(ctx, GenerateKey(PrefixAgent, "a"), 3, 0)

		c.DeleteByPrefix(ctx, PrefixPackage)

		_, ok := c.Get(ctx, GenerateKey(PrefixPackage, "a"))
		assert.False(t, ok)
		_, ok = c.Get(ctx, GenerateKey(PrefixAgent, "a"))
		assert.True(t, ok)
	})

	t.Run("expires entries", func(t *testing.T) {
		c := newTestCache(true)
		c.Set(ctx, "short", 1, 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		_, ok := c.Get(ctx, "short")
		assert.False(t, ok)
	})

	t.Run("disabled cache never hits", func(t *testing.T) {
		c := newTestCache(false)
		c.Set(ctx, "key", 1, 0)
		_, ok := c.Get(ctx, "key")
		assert.False(t, ok)
	})
}

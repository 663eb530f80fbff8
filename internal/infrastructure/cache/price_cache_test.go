package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestRedisCacheTreatsOutageAsMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewRedisPriceCache(rdb, time.Minute)
	ctx := context.Background()

	c.Set(ctx, &entity.Product{Name: "Rice 1kg", Barcode: "8901234567892"})
	_, ok := c.Get(ctx, "8901234567892")
	assert.False(t, ok)
	c.Invalidate(ctx, "8901234567892", "")
	assert.Error(t, c.Ping(ctx))
}

func TestNoopCache(t *testing.T) {
	c := NewNoopPriceCache()
	ctx := context.Background()
	c.Set(ctx, &entity.Product{Barcode: "1"})
	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)
	assert.NoError(t, c.Ping(ctx))
}

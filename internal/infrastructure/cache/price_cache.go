// Package cache keeps barcode price lookups in redis so the scanner path
// avoids the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
)

const (
	keyPrefix  = "price:"
	DefaultTTL = 4 * time.Hour
)

// PriceCache stores products by barcode. Implementations are best effort:
// a failed read is a miss and a failed write is logged and dropped.
type PriceCache interface {
	Get(ctx context.Context, barcode string) (*entity.Product, bool)
	Set(ctx context.Context, product *entity.Product)
	Invalidate(ctx context.Context, barcodes ...string)
	Ping(ctx context.Context) error
}

// NewRedisClient parses url and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

type redisPriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPriceCache(rdb *redis.Client, ttl time.Duration) PriceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisPriceCache{rdb: rdb, ttl: ttl}
}

func (c *redisPriceCache) Get(ctx context.Context, barcode string) (*entity.Product, bool) {
	raw, err := c.rdb.Get(ctx, keyPrefix+barcode).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("barcode", barcode).Msg("price cache read failed")
		}
		return nil, false
	}
	var p entity.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *redisPriceCache) Set(ctx context.Context, product *entity.Product) {
	b, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+product.Barcode, b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", product.Barcode).Msg("price cache write failed")
	}
}

func (c *redisPriceCache) Invalidate(ctx context.Context, barcodes ...string) {
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		if b != "" {
			keys = append(keys, keyPrefix+b)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("price cache invalidate failed")
	}
}

func (c *redisPriceCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// noopPriceCache is used when REDIS_URL is empty.
type noopPriceCache struct{}

func NewNoopPriceCache() PriceCache {
	return noopPriceCache{}
}

func (noopPriceCache) Get(context.Context, string) (*entity.Product, bool) { return nil, false }
func (noopPriceCache) Set(context.Context, *entity.Product)                {}
func (noopPriceCache) Invalidate(context.Context, ...string)               {}
func (noopPriceCache) Ping(context.Context) error                          { return nil }

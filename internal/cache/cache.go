// Package cache provides a versioned Redis read-through cache for catalog listings.
//
// Listings are stored under keys that embed a version counter. Invalidate bumps
// the counter, which orphans every cached listing at once; orphans expire by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"puntomoda/internal/domain"
	"puntomoda/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listPrefix = "catalog:list:v"
	versionKey = "catalog:version"
)

// Catalog caches product listings keyed by a caller-built filter key.
type Catalog struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCatalog(rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{rdb: rdb, ttl: ttl, logger: logger.Named("catalog_cache"), metrics: m}
}

// Connect opens a Redis client and verifies it with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// GetProducts returns the cached listing for key along with the cache version
// it looked under. The version is 0 when it could not be read. Any Redis or
// decoding failure is treated as a miss.
func (c *Catalog) GetProducts(ctx context.Context, key string) ([]domain.Product, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("read cache version", zap.Error(err))
		c.metrics.ObserveCacheLookup(false)
		return nil, 0, false
	}
	raw, err := c.rdb.Get(ctx, listKey(version, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("read cached listing", zap.String("key", key), zap.Error(err))
		}
		c.metrics.ObserveCacheLookup(false)
		return nil, version, false
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.logger.Warn("decode cached listing", zap.String("key", key), zap.Error(err))
		c.metrics.ObserveCacheLookup(false)
		return nil, version, false
	}
	c.metrics.ObserveCacheLookup(true)
	return products, version, true
}

// SetProducts stores a listing under the version returned by the GetProducts
// miss that preceded the database read. A listing read before an Invalidate
// therefore lands under an orphaned key. Version 0 skips the write; failures
// are logged and otherwise ignored.
func (c *Catalog) SetProducts(ctx context.Context, version int64, key string, products []domain.Product) {
	if version <= 0 {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("encode listing", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, listKey(version, key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("write cached listing", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate orphans every cached listing by bumping the version.
func (c *Catalog) Invalidate(ctx context.Context) error {
	v, err := c.rdb.Incr(ctx, versionKey).Result()
	if err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	c.logger.Debug("catalog cache invalidated", zap.Int64("version", v))
	return nil
}

func (c *Catalog) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so concurrent first readers agree on the initial version.
		if err := c.rdb.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.rdb.Get(ctx, versionKey).Int64()
	}
	return v, err
}

func listKey(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", listPrefix, version, key)
}

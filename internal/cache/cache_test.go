package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"puntomoda/internal/domain"
	"puntomoda/internal/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKeyEmbedsVersion(t *testing.T) {
	assert.Equal(t, "catalog:list:v3:category=shirts", listKey(3, "category=shirts"))
}

func TestCatalog_RoundTripAndInvalidate(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, "")
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Del(ctx, versionKey).Err())

	c := NewCatalog(rdb, time.Minute, nil, nil)
	_, version, ok := c.GetProducts(ctx, "all")
	require.False(t, ok)

	c.SetProducts(ctx, version, "all", []domain.Product{{ID: "p1", Name: "Shirt", Price: domain.MustMoney("9.99"), AvgRating: "4.5"}})
	got, _, ok := c.GetProducts(ctx, "all")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "9.99", got[0].Price.String())
	assert.Equal(t, "4.5", got[0].AvgRating)

	require.NoError(t, c.Invalidate(ctx))
	_, _, ok = c.GetProducts(ctx, "all")
	assert.False(t, ok)
}

func newMiniCatalog(t *testing.T) (*Catalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCatalog(rdb, time.Minute, nil, metrics.New()), mr
}

func TestCatalog_ListingReadBeforeInvalidateStaysOrphaned(t *testing.T) {
	ctx := context.Background()
	c, _ := newMiniCatalog(t)

	_, version, ok := c.GetProducts(ctx, "all")
	require.False(t, ok)
	require.Equal(t, int64(1), version)

	// A mutation lands between the miss and the write of the old listing.
	require.NoError(t, c.Invalidate(ctx))
	c.SetProducts(ctx, version, "all", []domain.Product{{ID: "stale"}})

	_, current, ok := c.GetProducts(ctx, "all")
	assert.False(t, ok)
	assert.Equal(t, int64(2), current)

	c.SetProducts(ctx, current, "all", []domain.Product{{ID: "fresh"}})
	got, _, ok := c.GetProducts(ctx, "all")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}

func TestCatalog_ExpiresAndSkipsUnknownVersion(t *testing.T) {
	ctx := context.Background()
	c, mr := newMiniCatalog(t)

	c.SetProducts(ctx, 0, "all", []domain.Product{{ID: "p1"}})
	assert.Empty(t, mr.Keys())

	_, version, _ := c.GetProducts(ctx, "all")
	c.SetProducts(ctx, version, "all", []domain.Product{{ID: "p1"}})
	_, _, ok := c.GetProducts(ctx, "all")
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, _, ok = c.GetProducts(ctx, "all")
	assert.False(t, ok)
}

func TestCatalog_RedisDownIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newMiniCatalog(t)
	mr.Close()

	_, version, ok := c.GetProducts(ctx, "all")
	assert.False(t, ok)
	assert.Zero(t, version)
	assert.Error(t, c.Invalidate(ctx))
}

package redis

import (
	"context"
	"testing"
	"time"

	"vending-machine-api/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCache_RoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCatalogCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetItems(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	items := []domain.Item{
		{ID: 1, ProductID: "A1", Price: 100},
		{ID: 2, ProductID: "B2", Price: 65},
	}
	require.NoError(t, cache.SetItems(ctx, items))

	cached, ok, err := cache.GetItems(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, items, cached)
	assert.Equal(t, time.Minute, s.TTL("vend:catalog:items"))

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.GetItems(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_EmptyListIsAHit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCatalogCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetItems(ctx, nil))

	cached, ok, err := cache.GetItems(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, cached)
}

func TestCatalogCache_CorruptEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCatalogCache(client, time.Minute)

	require.NoError(t, s.Set("vend:catalog:items", "not-json"))

	_, ok, err := cache.GetItems(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_Expiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCatalogCache(client, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.SetItems(ctx, []domain.Item{{ID: 1, ProductID: "A1", Price: 100}}))
	s.FastForward(2 * time.Second)

	_, ok, err := cache.GetItems(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/moa/storefront/internal/id"

	"github.com/moa/storefront/cart/internal/domain"
	"github.com/moa/storefront/cart/internal/store"
)

func setupRedis(t *testing.T, c context.Context) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	t.Cleanup(func() { redisClient.Close() })

	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return redisClient
}

func TestMutationsWriteSnapshotThrough(t *testing.T) {
	c := context.Background()
	cache := setupRedis(t, c)
	gen := id.NewGenerator()
	svc := NewCartService(store.NewMemoryStore(gen), cache, gen, taxRate)

	cart, err := svc.AddItem(c, "u1", domain.CartItem{
		ProductID:      "p1",
		Name:           "Walnut Bookshelf",
		UnitPriceMinor: 450000,
	}, 2)
	require.NoError(t, err)

	jsonCache, err := cache.Get(c, "carts:u1").Result()
	require.NoError(t, err, "mutation must write the snapshot through")
	cached := domain.Cart{}
	require.NoError(t, json.Unmarshal([]byte(jsonCache), &cached))
	assert.Equal(t, cart.ID, cached.ID)
	assert.Equal(t, cart.Items, cached.Items)
	assert.Equal(t, cart.TotalMinor, cached.TotalMinor)

	ttl, err := cache.TTL(c, "carts:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "snapshots expire instead of living forever")

	// A later mutation replaces the snapshot, not just the store row.
	cart, err = svc.UpdateItem(c, "u1", cart.Items[0].ID, 5)
	require.NoError(t, err)
	jsonCache, err = cache.Get(c, "carts:u1").Result()
	require.NoError(t, err)
	cached = domain.Cart{}
	require.NoError(t, json.Unmarshal([]byte(jsonCache), &cached))
	assert.Equal(t, int32(5), cached.Items[0].Quantity)
	assert.Equal(t, cart.TotalMinor, cached.TotalMinor)
}

func TestGetCartServesCachedSnapshot(t *testing.T) {
	c := context.Background()
	cache := setupRedis(t, c)
	gen := id.NewGenerator()

	// The store always fails, so a successful read can only come from the cache.
	svc := NewCartService(&failingStore{}, cache, gen, taxRate)

	snapshot := domain.New("cachedcart01", "u1", time.Now().UTC().Truncate(time.Microsecond))
	jsonCart, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, cache.Set(c, "carts:u1", jsonCart, time.Hour).Err())

	cart, err := svc.GetCart(c, "u1")

	require.NoError(t, err)
	assert.Equal(t, "cachedcart01", cart.ID)
	assert.Equal(t, "u1", cart.CustomerKey)
}

func TestGetCartFallsBackToStoreOnCacheMiss(t *testing.T) {
	c := context.Background()
	cache := setupRedis(t, c)
	gen := id.NewGenerator()
	svc := NewCartService(store.NewMemoryStore(gen), cache, gen, taxRate)

	cart, err := svc.GetCart(c, "u1")

	require.NoError(t, err)
	assert.NotEmpty(t, cart.ID)

	// The miss repopulates the cache for the next read.
	jsonCache, err := cache.Get(c, "carts:u1").Result()
	require.NoError(t, err)
	cached := domain.Cart{}
	require.NoError(t, json.Unmarshal([]byte(jsonCache), &cached))
	assert.Equal(t, cart.ID, cached.ID)
}

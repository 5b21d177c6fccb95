package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"

	"github.com/moa/storefront/cart/internal/domain"
)

func setupPostgres(t *testing.T, c context.Context) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	migrations := filepath.Join("..", "..", "..", "migrations")
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join(migrations, "20250301090000_create_table_carts.up.sql"),
			filepath.Join(migrations, "20250301090100_create_table_cart_items.up.sql"),
			filepath.Join(migrations, "20250301090200_create_table_orders.up.sql"),
			filepath.Join(migrations, "20250301090300_create_table_order_items.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}
	return pool
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	c := context.Background()
	pool := setupPostgres(t, c)
	s := NewPostgresStore(pool, id.NewGenerator())
	rate := decimal.RequireFromString("0.19")

	cart, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)

	again, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(
		t,
		cart.AddItem(domain.CartItem{
			ID:             "itemaaaa0001",
			ProductID:      "prodaaaa0001",
			Name:           "Teak Sideboard",
			UnitPriceMinor: 250000,
		}, 2, rate, now),
	)
	require.NoError(
		t,
		cart.AddItem(domain.CartItem{
			ID:             "itemaaaa0002",
			ProductID:      "prodaaaa0002",
			Name:           "Rattan Armchair",
			UnitPriceMinor: 89900,
		}, 1, rate, now),
	)
	require.NoError(t, s.Save(c, cart))

	found, err := s.Find(c, "u1")
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "itemaaaa0001", found.Items[0].ID, "insertion order survives the round trip")
	assert.Equal(t, "itemaaaa0002", found.Items[1].ID)
	assert.Equal(t, cart.SubtotalMinor, found.SubtotalMinor)
	assert.Equal(t, cart.TaxMinor, found.TaxMinor)
	assert.Equal(t, cart.TotalMinor, found.TotalMinor)
}

func TestPostgresStoreFindNotFound(t *testing.T) {
	c := context.Background()
	pool := setupPostgres(t, c)
	s := NewPostgresStore(pool, id.NewGenerator())

	_, err := s.Find(c, "nobody")

	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestPostgresStoreSaveReplacesWholesale(t *testing.T) {
	c := context.Background()
	pool := setupPostgres(t, c)
	s := NewPostgresStore(pool, id.NewGenerator())
	rate := decimal.RequireFromString("0.19")

	cart, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(
		t,
		cart.AddItem(domain.CartItem{
			ID:             "itemaaaa0001",
			ProductID:      "prodaaaa0001",
			UnitPriceMinor: 100,
		}, 3, rate, now),
	)
	require.NoError(t, s.Save(c, cart))

	cart.Clear(rate, now)
	require.NoError(t, s.Save(c, cart))

	found, err := s.Find(c, "u1")
	require.NoError(t, err)
	assert.Empty(t, found.Items)
	assert.Zero(t, found.TotalMinor)
}

func TestPostgresOrderStoreInsertAndCollision(t *testing.T) {
	c := context.Background()
	pool := setupPostgres(t, c)
	orders := NewPostgresOrderStore(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	order := domain.Order{
		Code:        "MOA-20250301-ab12",
		CustomerKey: "u1",
		Items: []domain.CartItem{{
			ID:             "itemaaaa0001",
			ProductID:      "prodaaaa0001",
			Name:           "Linen Sofa",
			UnitPriceMinor: 1200000,
			Quantity:       1,
			CreatedAt:      now,
		}},
		SubtotalMinor: 1200000,
		TaxMinor:      228000,
		TotalMinor:    1428000,
		CreatedAt:     now,
	}
	require.NoError(t, orders.Insert(c, order))

	err := orders.Insert(c, order)

	assert.ErrorIs(t, err, inErrors.ErrIdentifierCollision)
}

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"

	"github.com/moa/storefront/cart/internal/domain"
)

func TestMemoryStoreGetOrCreateIsIdempotent(t *testing.T) {
	s := NewMemoryStore(id.NewGenerator())
	c := context.Background()

	first, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)
	second, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "u1", first.CustomerKey)
}

func TestMemoryStoreGetOrCreateConcurrent(t *testing.T) {
	s := NewMemoryStore(id.NewGenerator())
	c := context.Background()
	const n = 16

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart, err := s.GetOrCreate(c, "u1")
			assert.NoError(t, err)
			ids[i] = cart.ID
		}(i)
	}
	wg.Wait()

	for _, cartID := range ids {
		assert.Equal(t, ids[0], cartID, "one key maps to exactly one cart")
	}
}

func TestMemoryStoreFindNotFound(t *testing.T) {
	s := NewMemoryStore(id.NewGenerator())

	_, err := s.Find(context.Background(), "nobody")

	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestMemoryStoreSaveReplacesWholesale(t *testing.T) {
	s := NewMemoryStore(id.NewGenerator())
	c := context.Background()
	rate := decimal.RequireFromString("0.19")

	cart, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)
	require.NoError(
		t,
		cart.AddItem(
			domain.CartItem{ID: "i1", ProductID: "p1", UnitPriceMinor: 100},
			2,
			rate,
			time.Now(),
		),
	)
	require.NoError(t, s.Save(c, cart))

	cart.RemoveItem("i1", rate, time.Now())
	require.NoError(t, s.Save(c, cart))

	found, err := s.Find(c, "u1")
	require.NoError(t, err)
	assert.Empty(t, found.Items)
	assert.Zero(t, found.TotalMinor)
}

func TestMemoryStoreClonesAcrossBoundary(t *testing.T) {
	s := NewMemoryStore(id.NewGenerator())
	c := context.Background()
	rate := decimal.RequireFromString("0.19")

	cart, err := s.GetOrCreate(c, "u1")
	require.NoError(t, err)
	require.NoError(
		t,
		cart.AddItem(
			domain.CartItem{ID: "i1", ProductID: "p1", UnitPriceMinor: 100},
			1,
			rate,
			time.Now(),
		),
	)
	require.NoError(t, s.Save(c, cart))

	// Mutating the returned copy must not leak into the store.
	found, err := s.Find(c, "u1")
	require.NoError(t, err)
	found.Items[0].Quantity = 99

	again, err := s.Find(c, "u1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), again.Items[0].Quantity)
}

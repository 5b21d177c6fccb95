package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"

	"github.com/moa/storefront/cart/internal/domain"
	"github.com/moa/storefront/cart/internal/store"
)

var taxRate = decimal.RequireFromString("0.19")

func newTestService(t *testing.T) *CartService {
	t.Helper()
	gen := id.NewGenerator()
	return NewCartService(store.NewMemoryStore(gen), nil, gen, taxRate)
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	svc := newTestService(t)

	cart, err := svc.GetCart(context.Background(), "u1")

	require.NoError(t, err)
	assert.NotEmpty(t, cart.ID)
	assert.Equal(t, "u1", cart.CustomerKey)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalMinor)
}

func TestGetCartReturnsSameCart(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestAddItemScenario(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	cart, err := svc.AddItem(c, "u1", domain.CartItem{
		ProductID:      "p1",
		Name:           "Walnut Bookshelf",
		UnitPriceMinor: 450000,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), cart.SubtotalMinor)
	assert.Equal(t, int64(85500), cart.TaxMinor)
	assert.Equal(t, int64(535500), cart.TotalMinor)

	cart, err = svc.AddItem(c, "u1", domain.CartItem{
		ProductID:      "p1",
		Name:           "Walnut Bookshelf",
		UnitPriceMinor: 450000,
	}, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(4), cart.Items[0].Quantity)
	assert.Equal(t, int64(1800000), cart.SubtotalMinor)
	assert.Equal(t, int64(342000), cart.TaxMinor)
	assert.Equal(t, int64(2142000), cart.TotalMinor)
}

func TestAddItemInvalidQuantityLeavesStoreUntouched(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	_, err := svc.AddItem(c, "u1", domain.CartItem{ProductID: "p1", UnitPriceMinor: 100}, 0)
	require.ErrorIs(t, err, inErrors.ErrInvalidQuantity)

	cart, err := svc.GetCart(c, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUpdateItemReplacesQuantity(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	cart, err := svc.AddItem(c, "u1", domain.CartItem{ProductID: "p1", UnitPriceMinor: 25000}, 3)
	require.NoError(t, err)

	cart, err = svc.UpdateItem(c, "u1", cart.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), cart.Items[0].Quantity)
	assert.Equal(t, int64(125000), cart.SubtotalMinor)
}

func TestUpdateItemZeroEmptiesCart(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	cart, err := svc.AddItem(c, "u1", domain.CartItem{ProductID: "p1", UnitPriceMinor: 450000}, 2)
	require.NoError(t, err)

	cart, err = svc.UpdateItem(c, "u1", cart.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.SubtotalMinor)
	assert.Zero(t, cart.TaxMinor)
	assert.Zero(t, cart.TotalMinor)
}

func TestUpdateItemMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateItem(context.Background(), "u1", "missing", 5)

	assert.ErrorIs(t, err, inErrors.ErrItemNotFound)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	cart, err := svc.AddItem(c, "u1", domain.CartItem{ProductID: "p1", UnitPriceMinor: 100}, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	first, err := svc.RemoveItem(c, "u1", itemID)
	require.NoError(t, err)
	second, err := svc.RemoveItem(c, "u1", itemID)
	require.NoError(t, err)

	assert.Empty(t, first.Items)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.TotalMinor, second.TotalMinor)
}

func TestClearCartNeverExisted(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ClearCart(context.Background(), "nobody")

	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestClearCartEmptiesExistingCart(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()

	_, err := svc.AddItem(c, "u1", domain.CartItem{ProductID: "p1", UnitPriceMinor: 9900}, 2)
	require.NoError(t, err)

	cart, err := svc.ClearCart(c, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalMinor)

	// Cleared, not deleted: a second clear still succeeds.
	_, err = svc.ClearCart(c, "u1")
	assert.NoError(t, err)
}

func TestConcurrentAddsDistinctProducts(t *testing.T) {
	svc := newTestService(t)
	c := context.Background()
	const n = 32

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddItem(c, "u1", domain.CartItem{
				ProductID:      fmt.Sprintf("p%d", i),
				UnitPriceMinor: 1000,
			}, 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	cart, err := svc.GetCart(c, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, n, "no adds may be lost")
	assert.Equal(t, int64(n*1000), cart.SubtotalMinor)
	assert.Equal(t, cart.SubtotalMinor+cart.TaxMinor, cart.TotalMinor)
}

// collidingStore wraps the memory store and fails Save with an identifier
// collision a fixed number of times.
type collidingStore struct {
	*store.MemoryStore
	mu         sync.Mutex
	collisions int
}

func (s *collidingStore) Save(c context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collisions > 0 {
		s.collisions--
		return fmt.Errorf("cart_items_pkey: %w", inErrors.ErrIdentifierCollision)
	}
	return s.MemoryStore.Save(c, cart)
}

func TestAddItemRetriesIdentifierCollision(t *testing.T) {
	gen := id.NewGenerator()
	colliding := &collidingStore{MemoryStore: store.NewMemoryStore(gen), collisions: 2}
	svc := NewCartService(colliding, nil, gen, taxRate)

	cart, err := svc.AddItem(
		context.Background(),
		"u1",
		domain.CartItem{ProductID: "p1", UnitPriceMinor: 100},
		1,
	)

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestAddItemGivesUpAfterBoundedCollisions(t *testing.T) {
	gen := id.NewGenerator()
	colliding := &collidingStore{
		MemoryStore: store.NewMemoryStore(gen),
		collisions:  maxCollisionAttempts,
	}
	svc := NewCartService(colliding, nil, gen, taxRate)

	_, err := svc.AddItem(
		context.Background(),
		"u1",
		domain.CartItem{ProductID: "p1", UnitPriceMinor: 100},
		1,
	)

	assert.ErrorIs(t, err, inErrors.ErrIdentifierCollision)
}

func TestStoreFailureIsSurfacedNotRetried(t *testing.T) {
	gen := id.NewGenerator()
	failing := &failingStore{}
	svc := NewCartService(failing, nil, gen, taxRate)

	_, err := svc.GetCart(context.Background(), "u1")

	assert.ErrorIs(t, err, inErrors.ErrStoreUnavailable)
	assert.Equal(t, 1, failing.calls, "store failures are the caller's retry problem")
}

type failingStore struct {
	calls int
}

func (s *failingStore) GetOrCreate(context.Context, string) (domain.Cart, error) {
	s.calls++
	return domain.Cart{}, inErrors.ErrStoreUnavailable
}

func (s *failingStore) Find(context.Context, string) (domain.Cart, error) {
	return domain.Cart{}, inErrors.ErrStoreUnavailable
}

func (s *failingStore) Save(context.Context, domain.Cart) error {
	return inErrors.ErrStoreUnavailable
}

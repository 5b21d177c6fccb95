package store

import (
	"context"
	"sync"
	"time"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"

	"github.com/moa/storefront/cart/internal/domain"
)

// MemoryStore is the in-process CartStore used by tests and local runs. Carts
// are cloned across the boundary so callers never share slices with the map.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
	gen   id.Generator
}

func NewMemoryStore(gen id.Generator) *MemoryStore {
	return &MemoryStore{carts: map[string]domain.Cart{}, gen: gen}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, customerKey string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[customerKey]; ok {
		return cart.Clone(), nil
	}
	cart := domain.New(s.gen.NewPublicID(), customerKey, time.Now())
	s.carts[customerKey] = cart.Clone()
	return cart, nil
}

func (s *MemoryStore) Find(_ context.Context, customerKey string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[customerKey]
	if !ok {
		return domain.Cart{}, inErrors.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.CustomerKey] = cart.Clone()
	return nil
}

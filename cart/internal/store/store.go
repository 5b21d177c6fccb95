// Package store keeps exactly one live cart per customer key. Both
// implementations honor the same contract: GetOrCreate never race-creates two
// carts for one key, Save replaces the stored cart wholesale, and Find never
// triggers creation.
package store

import (
	"context"

	"github.com/moa/storefront/cart/internal/domain"
)

type CartStore interface {
	// GetOrCreate returns the cart for customerKey, atomically creating an
	// empty one first if none exists.
	GetOrCreate(c context.Context, customerKey string) (domain.Cart, error)

	// Find returns ErrCartNotFound for a key that never had a cart. Read-only
	// callers use it to show "empty" without persisting anything.
	Find(c context.Context, customerKey string) (domain.Cart, error)

	// Save replaces the stored cart for cart.CustomerKey. Last writer wins at
	// this layer; ordering discipline is the service's job.
	Save(c context.Context, cart domain.Cart) error
}

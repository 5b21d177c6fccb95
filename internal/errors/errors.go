package errors

import (
	"errors"
)

var (
	// Cart aggregate and service errors. Every operation rejects before any
	// partial mutation is applied, so none of these leave a cart in a state
	// where totals and items disagree.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrEmptyCart       = errors.New("cart is empty")

	// ErrIdentifierCollision surfaces a storage uniqueness violation on a
	// generated code. Generation itself cannot fail; the store's unique
	// constraint is the authority and callers retry generation on it.
	ErrIdentifierCollision = errors.New("generated identifier already in use")

	// ErrStoreUnavailable is never retried by this layer; retry policy belongs
	// to the caller.
	ErrStoreUnavailable = errors.New("cart store unavailable")

	ErrEmptyAuth    = errors.New("missing authorization")
	ErrEmptySubject = errors.New("missing subject")
	ErrTokenInvalid = errors.New("invalid token")
)

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"
	"github.com/moa/storefront/internal/log"
	"github.com/moa/storefront/internal/otel"

	"github.com/moa/storefront/cart/internal/domain"
	"github.com/moa/storefront/cart/internal/store"
)

// CheckoutService turns a customer's cart into an immutable order. It consumes
// the cart through CartService so the per-customer serialization still holds.
type CheckoutService struct {
	carts  *CartService
	orders store.OrderStore
	gen    id.Generator
}

func NewCheckoutService(
	carts *CartService,
	orders store.OrderStore,
	gen id.Generator,
) *CheckoutService {
	return &CheckoutService{carts: carts, orders: orders, gen: gen}
}

// Checkout snapshots the cart into an order, then clears the cart. A failed
// clear still returns the order: the order is already persisted, and leaving
// the cart behind is recoverable while losing the order is not.
func (s *CheckoutService) Checkout(c context.Context, customerKey string) (domain.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Checkout").
		Str(log.KeyCustomerKey, customerKey).
		Logger()

	cart, err := s.carts.GetCart(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Order{}, err
	}
	if len(cart.Items) == 0 {
		err = inErrors.ErrEmptyCart
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Order{}, err
	}

	order, err := s.insertOrder(c, cart)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderCode, order.Code).Logger()
	logger.Info().Msg("created order")

	if _, err := s.carts.ClearCart(c, customerKey); err != nil {
		err = fmt.Errorf("failed clearing cart after checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order, err
	}
	logger.Info().Msg("cleared cart after checkout")

	return order, nil
}

// insertOrder mints an order code and retries the insert while the code
// collides with an existing order.
func (s *CheckoutService) insertOrder(c context.Context, cart domain.Cart) (domain.Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService insertOrder").
		Str(log.KeyCustomerKey, cart.CustomerKey).
		Logger()

	var lastErr error
	for attempt := range maxCollisionAttempts {
		now := time.Now()
		order := domain.NewOrder(s.gen.NewOrderCode(now), cart, now)

		err := s.orders.Insert(c, order)
		if errors.Is(err, inErrors.ErrIdentifierCollision) {
			lastErr = err
			logger.Warn().
				Int(log.KeyAttempt, attempt).
				Str(log.KeyOrderCode, order.Code).
				Err(err).
				Msg("order code collided, regenerating")
			continue
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("failed inserting order with error=%w", err)
		}
		return order, nil
	}
	return domain.Order{}, fmt.Errorf(
		"failed inserting order after %d attempts with error=%w",
		maxCollisionAttempts,
		lastErr,
	)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"
	"github.com/moa/storefront/internal/log"
	"github.com/moa/storefront/internal/otel"

	"github.com/moa/storefront/cart/internal/domain"
	"github.com/moa/storefront/cart/internal/store"
)

// Repeated collisions in a 36^12 space indicate a broken random source, not
// bad luck, so the retry bound is small and a breach is surfaced as fatal.
const maxCollisionAttempts = 3

const cacheTTL = time.Hour

// CartService is the only entry point callers use to touch a cart. Every
// operation is one read-mutate-write cycle against the store, serialized per
// customer key so concurrent mutations of one cart cannot lose updates.
// Operations never span two carts, so no cross-key lock ordering exists.
type CartService struct {
	store   store.CartStore
	cache   *redis.Client
	gen     id.Generator
	taxRate decimal.Decimal
	locks   keyedMutex
}

// NewCartService wires the service. cache may be nil, which disables snapshot
// caching; taxRate is the deployment's flat rate, e.g. 0.19.
func NewCartService(
	cartStore store.CartStore,
	cache *redis.Client,
	gen id.Generator,
	taxRate decimal.Decimal,
) *CartService {
	return &CartService{
		store:   cartStore,
		cache:   cache,
		gen:     gen,
		taxRate: taxRate,
	}
}

func (s *CartService) GetCart(c context.Context, customerKey string) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyCustomerKey, customerKey).
		Logger()

	unlock := s.locks.lock(customerKey)
	defer unlock()

	if cart, ok := s.readCache(c, customerKey); ok {
		logger.Info().Msg("found cart in cache")
		return cart, nil
	}

	cart, err := s.getOrCreate(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	s.writeCache(c, cart)
	return cart, nil
}

func (s *CartService) AddItem(
	c context.Context,
	customerKey string,
	item domain.CartItem,
	quantity int32,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyCustomerKey, customerKey).
		Str(log.KeyProductID, item.ProductID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	unlock := s.locks.lock(customerKey)
	defer unlock()

	var lastErr error
	for attempt := range maxCollisionAttempts {
		cart, err := s.getOrCreate(c, customerKey)
		if err != nil {
			err = fmt.Errorf("failed getting cart with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return domain.Cart{}, err
		}

		item.ID = s.gen.NewPublicID()
		if err = cart.AddItem(item, quantity, s.taxRate, time.Now()); err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return domain.Cart{}, err
		}

		err = s.store.Save(c, cart)
		if errors.Is(err, inErrors.ErrIdentifierCollision) {
			lastErr = err
			logger.Warn().Int(log.KeyAttempt, attempt).Err(err).Msg("item id collided, regenerating")
			continue
		}
		if err != nil {
			err = fmt.Errorf("failed saving cart with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return domain.Cart{}, err
		}

		s.writeCache(c, cart)
		logger.Info().Str(log.KeyCartID, cart.ID).Msg("added item to cart")
		return cart, nil
	}

	lastErr = fmt.Errorf(
		"failed saving cart after %d attempts with error=%w",
		maxCollisionAttempts,
		lastErr,
	)
	otel.RecordError(lastErr, span)
	logger.Error().Err(lastErr).Msg(lastErr.Error())
	return domain.Cart{}, lastErr
}

func (s *CartService) UpdateItem(
	c context.Context,
	customerKey string,
	itemID string,
	quantity int32,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyCustomerKey, customerKey).
		Str(log.KeyItemID, itemID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	unlock := s.locks.lock(customerKey)
	defer unlock()

	cart, err := s.getOrCreate(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	if err = cart.UpdateItemQuantity(itemID, quantity, s.taxRate, time.Now()); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	if err = s.store.Save(c, cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	s.writeCache(c, cart)
	logger.Info().Str(log.KeyCartID, cart.ID).Msg("updated cart item")
	return cart, nil
}

func (s *CartService) RemoveItem(
	c context.Context,
	customerKey string,
	itemID string,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyCustomerKey, customerKey).
		Str(log.KeyItemID, itemID).
		Logger()

	unlock := s.locks.lock(customerKey)
	defer unlock()

	cart, err := s.getOrCreate(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	cart.RemoveItem(itemID, s.taxRate, time.Now())

	if err = s.store.Save(c, cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	s.writeCache(c, cart)
	logger.Info().Str(log.KeyCartID, cart.ID).Msg("removed cart item")
	return cart, nil
}

// ClearCart distinguishes "never existed" from "empty": a key that never had
// a cart gets ErrCartNotFound instead of a lazily created empty cart.
func (s *CartService) ClearCart(c context.Context, customerKey string) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyCustomerKey, customerKey).
		Logger()

	unlock := s.locks.lock(customerKey)
	defer unlock()

	cart, err := s.store.Find(c, customerKey)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	cart.Clear(s.taxRate, time.Now())

	if err = s.store.Save(c, cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	s.writeCache(c, cart)
	logger.Info().Str(log.KeyCartID, cart.ID).Msg("cleared cart")
	return cart, nil
}

// getOrCreate retries only identifier collisions: a fresh cart id may collide
// with an existing row's primary key, and a retry draws a new id.
func (s *CartService) getOrCreate(c context.Context, customerKey string) (domain.Cart, error) {
	var lastErr error
	for range maxCollisionAttempts {
		cart, err := s.store.GetOrCreate(c, customerKey)
		if errors.Is(err, inErrors.ErrIdentifierCollision) {
			lastErr = err
			continue
		}
		if err != nil {
			return domain.Cart{}, err
		}
		return cart, nil
	}
	return domain.Cart{}, fmt.Errorf(
		"failed creating cart after %d attempts with error=%w",
		maxCollisionAttempts,
		lastErr,
	)
}

func (s *CartService) readCache(c context.Context, customerKey string) (domain.Cart, bool) {
	if s.cache == nil {
		return domain.Cart{}, false
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService readCache").
		Str(log.KeyCacheKey, cacheKey(customerKey)).
		Logger()

	jsonCache, err := s.cache.Get(c, cacheKey(customerKey)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Info().Err(err).Msg("failed finding cart in cache")
		}
		return domain.Cart{}, false
	}
	cart := domain.Cart{}
	if err = json.Unmarshal([]byte(jsonCache), &cart); err != nil {
		logger.Error().Err(err).Msg("failed unmarshaling cached cart")
		return domain.Cart{}, false
	}
	return cart, true
}

func (s *CartService) writeCache(c context.Context, cart domain.Cart) {
	if s.cache == nil {
		return
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService writeCache").
		Str(log.KeyCacheKey, cacheKey(cart.CustomerKey)).
		Logger()

	jsonCart, err := json.Marshal(cart)
	if err != nil {
		logger.Error().Err(err).Msg("failed marshaling cart for cache")
		return
	}
	// Cache failures never fail the operation; the store is the authority.
	err = s.cache.Set(c, cacheKey(cart.CustomerKey), jsonCart, cacheTTL).Err()
	if err != nil {
		logger.Error().Err(err).Msg("failed inserting cart to cache")
	}
}

func cacheKey(customerKey string) string {
	return fmt.Sprintf("carts:%s", customerKey)
}

// keyedMutex serializes the read-mutate-write cycle per customer key. Entries
// are never evicted; the map is bounded by the number of distinct customers
// seen by this process.
type keyedMutex struct {
	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func (m *keyedMutex) lock(key string) func() {
	m.mu.Lock()
	if m.keys == nil {
		m.keys = map[string]*sync.Mutex{}
	}
	l, ok := m.keys[key]
	if !ok {
		l = &sync.Mutex{}
		m.keys[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

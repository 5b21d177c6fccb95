package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	inErrors "github.com/moa/storefront/internal/errors"
	"github.com/moa/storefront/internal/id"
	"github.com/moa/storefront/internal/log"

	"github.com/moa/storefront/cart/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore persists one row per cart keyed by id with a unique constraint
// on customer_key, and one row per item keyed by (cart_id, id). Save replaces
// the item rows wholesale inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
	gen  id.Generator
}

func NewPostgresStore(pool *pgxpool.Pool, gen id.Generator) *PostgresStore {
	return &PostgresStore{pool: pool, gen: gen}
}

func (s *PostgresStore) GetOrCreate(c context.Context, customerKey string) (domain.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStore GetOrCreate").
		Str(log.KeyCustomerKey, customerKey).
		Logger()

	now := time.Now()
	cartID := s.gen.NewPublicID()
	_, err := s.pool.Exec(c, `
		insert into carts (id, customer_key, subtotal_minor, tax_minor, total_minor, created_at, updated_at)
		values ($1, $2, 0, 0, 0, $3, $3)
		on conflict (customer_key) do nothing`,
		cartID, customerKey, now,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting cart with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	return s.Find(c, customerKey)
}

func (s *PostgresStore) Find(c context.Context, customerKey string) (domain.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStore Find").
		Str(log.KeyCustomerKey, customerKey).
		Logger()

	cart := domain.Cart{Items: []domain.CartItem{}}
	err := s.pool.QueryRow(c, `
		select id, customer_key, subtotal_minor, tax_minor, total_minor, created_at, updated_at
		from carts
		where customer_key = $1`,
		customerKey,
	).Scan(
		&cart.ID,
		&cart.CustomerKey,
		&cart.SubtotalMinor,
		&cart.TaxMinor,
		&cart.TotalMinor,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, inErrors.ErrCartNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	rows, err := s.pool.Query(c, `
		select id, product_id, name, image_url, category, unit_price_minor, quantity, created_at
		from cart_items
		where cart_id = $1
		order by position`,
		cart.ID,
	)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	defer rows.Close()
	for rows.Next() {
		item := domain.CartItem{}
		err = rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.ImageURL,
			&item.Category,
			&item.UnitPriceMinor,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			err = fmt.Errorf("failed scanning cart item with error=%w", mapPgError(err))
			logger.Error().Err(err).Msg(err.Error())
			return domain.Cart{}, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("failed reading cart items with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	return cart, nil
}

func (s *PostgresStore) Save(c context.Context, cart domain.Cart) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStore Save").
		Str(log.KeyCartID, cart.ID).
		Str(log.KeyCustomerKey, cart.CustomerKey).
		Logger()

	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed beginning transaction with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logger.Error().Err(rollbackErr).Msg("failed rolling back transaction")
		}
	}()

	_, err = tx.Exec(c, `
		update carts
		set subtotal_minor = $2, tax_minor = $3, total_minor = $4, updated_at = $5
		where id = $1`,
		cart.ID, cart.SubtotalMinor, cart.TaxMinor, cart.TotalMinor, cart.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("failed updating cart with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	_, err = tx.Exec(c, `delete from cart_items where cart_id = $1`, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed deleting cart items with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	batch := &pgx.Batch{}
	for position, item := range cart.Items {
		batch.Queue(`
			insert into cart_items (cart_id, id, product_id, name, image_url, category, unit_price_minor, quantity, position, created_at)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			cart.ID,
			item.ID,
			item.ProductID,
			item.Name,
			item.ImageURL,
			item.Category,
			item.UnitPriceMinor,
			item.Quantity,
			position,
			item.CreatedAt,
		)
	}
	err = tx.SendBatch(c, batch).Close()
	if err != nil {
		err = fmt.Errorf("failed inserting cart items with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

// mapPgError folds driver errors into the store taxonomy: unique violations
// mean a generated identifier is already taken, anything else means the store
// itself is unavailable.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, inErrors.ErrIdentifierCollision)
	}
	return errors.Join(inErrors.ErrStoreUnavailable, err)
}

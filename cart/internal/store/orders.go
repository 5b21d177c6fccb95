package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/moa/storefront/internal/log"

	"github.com/moa/storefront/cart/internal/domain"
)

// OrderStore persists checkout orders. Insert fails with
// ErrIdentifierCollision when the order code is already taken, so the caller
// can mint a fresh code and retry.
type OrderStore interface {
	Insert(c context.Context, order domain.Order) error
}

type PostgresOrderStore struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderStore(pool *pgxpool.Pool) *PostgresOrderStore {
	return &PostgresOrderStore{pool: pool}
}

func (s *PostgresOrderStore) Insert(c context.Context, order domain.Order) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresOrderStore Insert").
		Str(log.KeyOrderCode, order.Code).
		Str(log.KeyCustomerKey, order.CustomerKey).
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
		insert into orders (code, customer_key, subtotal_minor, tax_minor, total_minor, created_at)
		values ($1, $2, $3, $4, $5, $6)`,
		order.Code,
		order.CustomerKey,
		order.SubtotalMinor,
		order.TaxMinor,
		order.TotalMinor,
		order.CreatedAt,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", mapPgError(err))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	batch := &pgx.Batch{}
	for position, item := range order.Items {
		batch.Queue(`
			insert into order_items (order_code, id, product_id, name, image_url, category, unit_price_minor, quantity, position)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			order.Code,
			item.ID,
			item.ProductID,
			item.Name,
			item.ImageURL,
			item.Category,
			item.UnitPriceMinor,
			item.Quantity,
			position,
		)
	}
	err = tx.SendBatch(c, batch).Close()
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", mapPgError(err))
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

package archive

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"orderflow/internal/cache/lru"
	"orderflow/internal/interfaces"
	"orderflow/internal/models"
)

// ErrNotFound reports that no archived order has the requested id
var ErrNotFound = errors.New("order not found in archive")

// A Store is the order archive: an idempotent Postgres table behind an LRU
// read cache. Writes are best-effort; the pipeline treats a failed write as
// a logged warning, never a processing failure.
type Store struct {
	db     *DB
	cache  interfaces.Cache[string, *models.Order]
	logger *zerolog.Logger
}

// NewStore creates a store over an open pool
func NewStore(db *DB, cacheCapacity int, logger *zerolog.Logger) (*Store, error) {
	cache, err := lru.New[string, *models.Order](cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache, logger: logger}, nil
}

// SaveOrder upserts an order row and refreshes the cache
func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO order_archive (order_id, product, price, processed_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (order_id) DO NOTHING;
	`

	if _, err := s.db.pool.Exec(ctx, query, order.OrderID, order.Product, order.Price); err != nil {
		return err
	}

	s.cache.Set(order.OrderID, order)
	return nil
}

// GetOrder returns an order from the cache, if it's not there - from the
// database
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if order, ok := s.cache.Get(orderID); ok {
		return order, nil
	}

	query := `
		SELECT order_id, product, price
		FROM order_archive
		WHERE order_id = $1
	`

	var order models.Order
	err := pgxscan.Get(ctx, s.db.pool, &order, query, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to read archived order")
		return nil, err
	}

	s.cache.Set(orderID, &order)
	return &order, nil
}

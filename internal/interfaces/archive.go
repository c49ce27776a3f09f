package interfaces

import (
	"context"

	"orderflow/internal/models"
)

// An OrderArchive is a best-effort durable record of processed orders,
// serving the by-id lookup. It never participates in the state machine.
type OrderArchive interface {
	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// A Cache is a bounded key-value store used in front of the archive
type Cache[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	Contains(key K) bool
	Delete(key K) error
	Flush()
	Len() int
	Capacity() int
}

package interfaces

import (
	"context"

	"orderflow/internal/models"
)

// An OrderSource synthesizes and publishes new orders on demand
type OrderSource interface {
	ProduceOrder(ctx context.Context) (*models.Order, error)
}

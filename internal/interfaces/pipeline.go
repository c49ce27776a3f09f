package interfaces

import (
	"context"

	"orderflow/internal/models"
)

// An OrderProcessor is the external fallible operation applied to every
// consumed order. A non-nil error is treated as a transient failure and
// drives the retry/DLQ escalation.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order *models.Order) error
}

// A StatsRecorder receives processing outcomes from the pipeline
type StatsRecorder interface {
	RecordOrder(order *models.Order)
	RecordRetry()
	RecordDlq(order *models.Order, reason string)
}

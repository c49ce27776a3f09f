// Package stats implements the concurrent aggregate view of pipeline outcomes
package stats

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/interfaces"
	"orderflow/internal/models"
	"orderflow/internal/stats/ring"
)

// DefaultCapacity bounds the recent-orders and DLQ view buffers
const DefaultCapacity = 50

// An Aggregator maintains running statistics and bounded recent-event
// buffers. All operations are safe for unsynchronized concurrent use. A
// Stats snapshot is not atomic across fields: readers may observe counters
// from slightly different instants under concurrent writes.
type Aggregator struct {
	totalOrders atomic.Int64
	priceSum    atomic.Int64 // Cents
	retryCount  atomic.Int64
	dlqCount    atomic.Int64

	recent *ring.Buffer[models.OrderView]
	dlq    *ring.Buffer[models.OrderView]

	notifier interfaces.StatsNotifier
	logger   *zerolog.Logger
	now      func() time.Time
}

// New creates an aggregator with the given buffer capacity. The notifier is
// optional and may be nil.
func New(capacity int, notifier interfaces.StatsNotifier, logger *zerolog.Logger) (*Aggregator, error) {
	recent, err := ring.New[models.OrderView](capacity)
	if err != nil {
		return nil, err
	}

	dlq, err := ring.New[models.OrderView](capacity)
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		recent:   recent,
		dlq:      dlq,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// RecordOrder registers one successfully processed order
func (a *Aggregator) RecordOrder(order *models.Order) {
	a.totalOrders.Add(1)
	a.priceSum.Add(int64(CentsFromPrice(order.Price)))

	view := order.View(models.StatusProcessed, a.now().UnixMilli())
	a.recent.Append(view)

	a.logger.Info().
		Str("order_id", order.OrderID).
		Float64("price", order.Price).
		Msg("Recorded processed order")

	if a.notifier != nil {
		a.notifier.OrderProcessed(view)
		a.notifier.StatsUpdated(a.Stats())
	}
}

// RecordRetry registers one scheduled retry
func (a *Aggregator) RecordRetry() {
	a.retryCount.Add(1)

	if a.notifier != nil {
		a.notifier.StatsUpdated(a.Stats())
	}
}

// RecordDlq registers one dead-lettered order with its failure reason
func (a *Aggregator) RecordDlq(order *models.Order, reason string) {
	a.dlqCount.Add(1)

	view := order.View(models.DlqStatus(reason), a.now().UnixMilli())
	a.dlq.Append(view)

	a.logger.Warn().
		Str("order_id", order.OrderID).
		Str("reason", reason).
		Msg("Recorded dead-lettered order")

	if a.notifier != nil {
		a.notifier.OrderDeadLettered(view)
		a.notifier.StatsUpdated(a.Stats())
	}
}

// Stats recomputes an aggregate snapshot from the counters
func (a *Aggregator) Stats() models.Stats {
	total := a.totalOrders.Load()

	average := 0.0
	if total > 0 {
		average = Cents(a.priceSum.Load()).Price() / float64(total)
	}

	return models.Stats{
		TotalOrders:    total,
		RunningAverage: average,
		RetryCount:     a.retryCount.Load(),
		DlqCount:       a.dlqCount.Load(),
	}
}

// RecentOrders returns a point-in-time copy of the recent-orders buffer,
// oldest first
func (a *Aggregator) RecentOrders() []models.OrderView {
	return a.recent.Snapshot()
}

// DlqMessages returns a point-in-time copy of the DLQ view buffer, oldest
// first
func (a *Aggregator) DlqMessages() []models.OrderView {
	return a.dlq.Snapshot()
}

package interfaces

import "orderflow/internal/models"

// A StatsNotifier receives push updates from the aggregator: a view for
// every processed or dead-lettered order and a stats snapshot after every
// recorded event. Implementations must not block the caller.
type StatsNotifier interface {
	OrderProcessed(view models.OrderView)
	OrderDeadLettered(view models.OrderView)
	StatsUpdated(stats models.Stats)
}

// A StatsSource exposes the aggregator read side to observers
type StatsSource interface {
	Stats() models.Stats
	RecentOrders() []models.OrderView
	DlqMessages() []models.OrderView
}

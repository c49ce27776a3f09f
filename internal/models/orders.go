// Package models holds the domain types shared across the pipeline
package models

import (
	"fmt"
	"math"
	"strings"
)

// Order statuses as they appear in an OrderView
const (
	StatusSent      = "SENT"
	StatusProcessed = "PROCESSED"
	statusDlqPrefix = "DLQ: "
)

// An Order is a single immutable order event travelling between topics
type Order struct {
	OrderID string  `json:"order_id"`
	Product string  `json:"product"`
	Price   float64 `json:"price"`
}

// An OrderView is a read-only projection of an order outcome for observers
type OrderView struct {
	OrderID    string  `json:"order_id"`
	Product    string  `json:"product"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	ObservedAt int64   `json:"observed_at"`
}

// Stats is an aggregate snapshot derived from the aggregator counters
type Stats struct {
	TotalOrders    int64   `json:"total_orders"`
	RunningAverage float64 `json:"running_average"`
	RetryCount     int64   `json:"retry_count"`
	DlqCount       int64   `json:"dlq_count"`
}

// An Envelope pairs an encoded order payload with its transport metadata.
// Attempt rides out-of-band as a header, never inside the payload bytes.
type Envelope struct {
	Topic   string
	Key     string
	Payload []byte
	Attempt int
}

// DlqStatus builds the status string for a dead-lettered order view
func DlqStatus(reason string) string {
	return statusDlqPrefix + reason
}

// A ValidationError is a custom error type for order validation
type ValidationError struct {
	Field   string
	Message string
}

// Error is an interface implementation for errors
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in field order.%s: %s", e.Field, e.Message)
}

// NewOrderValidationError is a validation error in the Order
func NewOrderValidationError(field, message string) ValidationError {
	return ValidationError{field, message}
}

// Validate checks if the Order data is correct
func (o *Order) Validate() error {
	if strings.TrimSpace(o.OrderID) == "" {
		return NewOrderValidationError("order_id", "is required")
	}

	if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		return NewOrderValidationError("price", "must be finite")
	}

	if o.Price < 0 {
		return NewOrderValidationError("price", "must be non-negative")
	}

	return nil
}

// View builds an OrderView for this order with the given status
func (o *Order) View(status string, observedAt int64) OrderView {
	return OrderView{
		OrderID:    o.OrderID,
		Product:    o.Product,
		Price:      o.Price,
		Status:     status,
		ObservedAt: observedAt,
	}
}

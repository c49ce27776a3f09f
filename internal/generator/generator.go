// Package generator synthesizes orders and publishes them to the primary topic
package generator

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"orderflow/internal/codec"
	"orderflow/internal/interfaces"
	"orderflow/internal/models"
)

// products is the fixed catalog synthetic orders draw from
var products = []string{
	"Laptop", "Smartphone", "Headphones", "Keyboard", "Mouse",
	"Monitor", "Tablet", "Camera", "Smartwatch", "Speaker",
}

const (
	priceMin  = 10.0
	priceSpan = 990.0 // prices land in [10.0, 1000.0)
)

// A Generator produces synthetic orders. The random source is injected and
// guarded by a mutex, so one generator is safe for concurrent use.
type Generator struct {
	publisher interfaces.Publisher
	topic     string
	logger    *zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator publishing to the given primary topic
func New(publisher interfaces.Publisher, topic string, rng *rand.Rand, logger *zerolog.Logger) *Generator {
	return &Generator{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		rng:       rng,
	}
}

// ProduceOrder synthesizes one order and publishes it asynchronously,
// returning the order without waiting for the broker acknowledgment
func (g *Generator) ProduceOrder(ctx context.Context) (*models.Order, error) {
	g.mu.Lock()
	product := products[g.rng.IntN(len(products))]
	price := priceMin + g.rng.Float64()*priceSpan
	g.mu.Unlock()

	order := &models.Order{
		OrderID: uuid.NewString(),
		Product: product,
		Price:   math.Round(price*100) / 100,
	}

	payload, err := codec.Encode(order)
	if err != nil {
		return nil, err
	}

	env := models.Envelope{
		Topic:   g.topic,
		Key:     order.OrderID,
		Payload: payload,
	}

	err = g.publisher.Publish(ctx, env, func(pubErr error) {
		if pubErr != nil {
			g.logger.Error().
				Err(pubErr).
				Str("order_id", order.OrderID).
				Msg("Failed to send order")
			return
		}
		g.logger.Info().
			Str("order_id", order.OrderID).
			Str("topic", g.topic).
			Msg("Sent order")
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

package generator

import (
	"context"
	"math/rand/v2"
	"os"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"orderflow/internal/codec"
	"orderflow/internal/models"
)

// A mockPublisher captures published envelopes and confirms synchronously
type mockPublisher struct {
	envelopes []models.Envelope
}

func (m *mockPublisher) Publish(ctx context.Context, env models.Envelope, done func(error)) error {
	m.envelopes = append(m.envelopes, env)
	if done != nil {
		done(nil)
	}
	return nil
}

func newTestGenerator(pub *mockPublisher) *Generator {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	rng := rand.New(rand.NewPCG(1, 2))
	return New(pub, "orders", rng, &logger)
}

func TestGenerator_ProduceOrder(t *testing.T) {
	pub := &mockPublisher{}
	gen := newTestGenerator(pub)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		order, err := gen.ProduceOrder(context.Background())
		if err != nil {
			t.Fatalf("error: %v", err)
		}

		if order.OrderID == "" {
			t.Fatalf("error: empty order id")
		}
		if seen[order.OrderID] {
			t.Errorf("error: duplicate order id %s", order.OrderID)
		}
		seen[order.OrderID] = true

		if !slices.Contains(products, order.Product) {
			t.Errorf("error: product %q not in catalog", order.Product)
		}
		if order.Price < 10.0 || order.Price >= 1000.0 {
			t.Errorf("error: price %f outside [10.0, 1000.0)", order.Price)
		}
	}

	if len(pub.envelopes) != 200 {
		t.Fatalf("error: expected 200 publishes, got %d", len(pub.envelopes))
	}
}

func TestGenerator_PublishesDecodablePayload(t *testing.T) {
	pub := &mockPublisher{}
	gen := newTestGenerator(pub)

	order, err := gen.ProduceOrder(context.Background())
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	env := pub.envelopes[0]
	if env.Topic != "orders" {
		t.Errorf("error: topic = %s, want orders", env.Topic)
	}
	if env.Key != order.OrderID {
		t.Errorf("error: key = %s, want %s", env.Key, order.OrderID)
	}
	if env.Attempt != 0 {
		t.Errorf("error: primary publish must carry attempt 0, got %d", env.Attempt)
	}

	decoded, err := codec.Decode(env.Payload)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if *decoded != *order {
		t.Errorf("error: payload mismatch: got %+v, want %+v", *decoded, *order)
	}
}

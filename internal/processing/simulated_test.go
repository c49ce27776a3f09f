package processing

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"orderflow/internal/models"
)

func newSimulated(failureOneIn int) *Simulated {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	return NewSimulated(failureOneIn, rand.New(rand.NewPCG(7, 11)), &logger)
}

func TestSimulated_NeverFailsWhenDisabled(t *testing.T) {
	p := newSimulated(0)
	order := &models.Order{OrderID: "steady", Product: "Laptop", Price: 100}

	for i := 0; i < 100; i++ {
		if err := p.ProcessOrder(context.Background(), order); err != nil {
			t.Fatalf("error: %v", err)
		}
	}
}

func TestSimulated_AlwaysFailsAtOne(t *testing.T) {
	p := newSimulated(1)
	order := &models.Order{OrderID: "doomed", Product: "Camera", Price: 300}

	err := p.ProcessOrder(context.Background(), order)
	if err == nil {
		t.Fatalf("error: expected failure")
	}
	if !errors.Is(err, models.ErrTransientProcessing) {
		t.Errorf("error: expected transient processing error, got %v", err)
	}
}

func TestSimulated_NilOrder(t *testing.T) {
	p := newSimulated(0)

	if err := p.ProcessOrder(context.Background(), nil); err == nil {
		t.Errorf("error: expected error for nil order")
	}
}

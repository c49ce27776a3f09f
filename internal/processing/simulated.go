// Package processing holds the stand-in for the external order processing
// operation. Real deployments supply their own interfaces.OrderProcessor;
// the simulated one exists so the full escalation path can be exercised.
package processing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"

	"orderflow/internal/models"
)

// A Simulated processor fails roughly one in failureOneIn calls with a
// transient error. failureOneIn <= 0 disables failures.
type Simulated struct {
	failureOneIn int
	logger       *zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated processor with an injected random source
func NewSimulated(failureOneIn int, rng *rand.Rand, logger *zerolog.Logger) *Simulated {
	return &Simulated{
		failureOneIn: failureOneIn,
		logger:       logger,
		rng:          rng,
	}
}

// ProcessOrder succeeds unless the simulated failure fires
func (s *Simulated) ProcessOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}

	if s.failureOneIn > 0 {
		s.mu.Lock()
		failed := s.rng.IntN(s.failureOneIn) == 0
		s.mu.Unlock()

		if failed {
			s.logger.Debug().
				Str("order_id", order.OrderID).
				Msg("Simulated processing failure")
			return fmt.Errorf("%w: simulated temporary failure", models.ErrTransientProcessing)
		}
	}

	return nil
}

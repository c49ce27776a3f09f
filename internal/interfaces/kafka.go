package interfaces

import (
	"context"

	"orderflow/internal/models"
)

// An InboundMessage carries one consumed record into a handler
type InboundMessage struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Attempt   int
}

// A MessageHandler processes one consumed record. Implementations own all
// failure handling; a handler never stops the consumer loop.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg InboundMessage)
}

// A Publisher sends an envelope to its topic asynchronously. The done
// callback, when non-nil, runs exactly once with the publish result and may
// run on a different goroutine than the caller.
type Publisher interface {
	Publish(ctx context.Context, env models.Envelope, done func(error)) error
}

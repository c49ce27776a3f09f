package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"orderflow/internal/codec"
	"orderflow/internal/interfaces"
	"orderflow/internal/models"
)

// PrimaryHandler adapts first-delivery records into the pipeline
type PrimaryHandler struct {
	Pipeline *Pipeline
}

// HandleMessage decodes the record and runs the first processing attempt.
// Tombstones are skipped; undecodable payloads dead-letter immediately.
func (h PrimaryHandler) HandleMessage(ctx context.Context, msg interfaces.InboundMessage) {
	order, ok := h.Pipeline.decodeInbound(ctx, msg)
	if !ok {
		return
	}

	h.Pipeline.HandlePrimary(ctx, order)
}

// RetryHandler adapts retry-topic records into the pipeline
type RetryHandler struct {
	Pipeline *Pipeline
}

// HandleMessage decodes the record and resumes processing at the attempt
// carried in the message metadata
func (h RetryHandler) HandleMessage(ctx context.Context, msg interfaces.InboundMessage) {
	order, ok := h.Pipeline.decodeInbound(ctx, msg)
	if !ok {
		return
	}

	h.Pipeline.HandleRetry(ctx, order, msg.Attempt)
}

// decodeInbound decodes and validates a consumed payload. It reports false
// when there is nothing to process: a tombstone, or a malformed or invalid
// order that was forwarded to the DLQ.
func (p *Pipeline) decodeInbound(ctx context.Context, msg interfaces.InboundMessage) (*models.Order, bool) {
	decoded, err := codec.Decode(msg.Value)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Failed to decode order payload, sending to dead letter queue")

		p.deadLetterRaw(ctx, msg, "decode: "+err.Error())
		return nil, false
	}

	if decoded == nil {
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("Skipping tombstone record")
		return nil, false
	}

	// An invalid order cannot become valid on redelivery; it skips the
	// retry budget like an undecodable payload.
	if err := decoded.Validate(); err != nil {
		p.logger.Error().
			Err(err).
			Str("order_id", decoded.OrderID).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("Order failed validation, sending to dead letter queue")

		p.deadLetter(ctx, decoded, msg.Attempt, "validation: "+err.Error())
		return nil, false
	}

	return decoded, true
}

// DlqObserver logs dead-lettered records for operators. It is a terminal
// sink: consumption performs no state transition, the outcome is already
// recorded.
type DlqObserver struct {
	Logger *zerolog.Logger
}

// HandleMessage logs the dead-lettered order, or the raw size when the
// payload does not decode
func (h DlqObserver) HandleMessage(ctx context.Context, msg interfaces.InboundMessage) {
	order, err := codec.Decode(msg.Value)
	if err != nil || order == nil {
		h.Logger.Info().
			Str("key", string(msg.Key)).
			Int("payload_size", len(msg.Value)).
			Msg("Undecodable order in DLQ")
		return
	}

	h.Logger.Info().
		Str("order_id", order.OrderID).
		Str("product", order.Product).
		Float64("price", order.Price).
		Msg("Order in DLQ")
}

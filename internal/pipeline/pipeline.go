// Package pipeline implements the retry/DLQ state machine. An envelope
// moves RECEIVED -> PROCESSING -> SUCCEEDED, RETRY_SCHEDULED or
// DEAD_LETTERED; the attempt counter travels with the message, so the
// pipeline itself holds no shared mutable state.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"orderflow/internal/codec"
	"orderflow/internal/interfaces"
	"orderflow/internal/models"
)

// A Pipeline orchestrates one processing attempt per consumed order and
// escalates failures through the retry topic into the dead-letter topic
type Pipeline struct {
	processor interfaces.OrderProcessor
	stats     interfaces.StatsRecorder
	publisher interfaces.Publisher
	archive   interfaces.OrderArchive

	retryTopic       string
	dlqTopic         string
	maxRetryAttempts int

	logger *zerolog.Logger
}

// New creates a pipeline. The archive is optional and may be nil.
func New(
	processor interfaces.OrderProcessor,
	stats interfaces.StatsRecorder,
	publisher interfaces.Publisher,
	archive interfaces.OrderArchive,
	retryTopic, dlqTopic string,
	maxRetryAttempts int,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		processor:        processor,
		stats:            stats,
		publisher:        publisher,
		archive:          archive,
		retryTopic:       retryTopic,
		dlqTopic:         dlqTopic,
		maxRetryAttempts: maxRetryAttempts,
		logger:           logger,
	}
}

// HandlePrimary runs one first-delivery processing attempt
func (p *Pipeline) HandlePrimary(ctx context.Context, order *models.Order) {
	p.Process(ctx, order, 0)
}

// HandleRetry runs one processing attempt for a redelivered order
func (p *Pipeline) HandleRetry(ctx context.Context, order *models.Order, attempt int) {
	p.Process(ctx, order, attempt)
}

// Process invokes the external processing operation and records the
// outcome. Failures never propagate to the caller: they are fully resolved
// into a retry publish or a dead-letter publish.
func (p *Pipeline) Process(ctx context.Context, order *models.Order, attempt int) {
	if order == nil {
		return
	}

	p.logger.Info().
		Str("order_id", order.OrderID).
		Int("attempt", attempt+1).
		Msg("Processing order")

	if err := p.processor.ProcessOrder(ctx, order); err != nil {
		p.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Int("attempt", attempt+1).
			Msg("Failed to process order")

		p.handleFailure(ctx, order, attempt, err)
		return
	}

	p.stats.RecordOrder(order)

	if p.archive != nil {
		if err := p.archive.SaveOrder(ctx, order); err != nil {
			p.logger.Warn().
				Err(err).
				Str("order_id", order.OrderID).
				Msg("Failed to archive processed order")
		}
	}

	p.logger.Info().
		Str("order_id", order.OrderID).
		Msg("Successfully processed order")
}

// handleFailure schedules a retry while the attempt budget lasts, otherwise
// dead-letters the order. maxRetryAttempts counts retries beyond the
// original try, so attempt == maxRetryAttempts means the budget is spent.
func (p *Pipeline) handleFailure(ctx context.Context, order *models.Order, attempt int, cause error) {
	if attempt < p.maxRetryAttempts {
		p.scheduleRetry(ctx, order, attempt+1)
		return
	}

	p.logger.Error().
		Str("order_id", order.OrderID).
		Int("max_retry_attempts", p.maxRetryAttempts).
		Msg("Max retry attempts reached, sending order to DLQ")

	p.deadLetter(ctx, order, attempt, "Max retries exceeded: "+cause.Error())
}

// scheduleRetry republishes the order to the retry topic with an
// incremented attempt header. The retry is recorded only once the publish
// is confirmed; an unacknowledged publish leaves the counter untouched.
func (p *Pipeline) scheduleRetry(ctx context.Context, order *models.Order, nextAttempt int) {
	payload, err := codec.Encode(order)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("Failed to encode order for retry, sending to DLQ")

		p.deadLetter(ctx, order, nextAttempt-1, "encode: "+err.Error())
		return
	}

	p.logger.Info().
		Str("order_id", order.OrderID).
		Int("attempt", nextAttempt).
		Msg("Sending order to retry topic")

	env := models.Envelope{
		Topic:   p.retryTopic,
		Key:     order.OrderID,
		Payload: payload,
		Attempt: nextAttempt,
	}

	err = p.publisher.Publish(ctx, env, func(pubErr error) {
		if pubErr != nil {
			p.logger.Error().
				Err(pubErr).
				Str("order_id", order.OrderID).
				Msg("Retry publish not acknowledged, retry not recorded")
			return
		}
		p.stats.RecordRetry()
	})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("Failed to publish order to retry topic")
	}
}

// deadLetter publishes the order to the dead-letter topic. Recording is
// gated on the confirmed publish, like retries. The envelope carries the
// final attempt count so DLQ records keep their retry-attempt header.
func (p *Pipeline) deadLetter(ctx context.Context, order *models.Order, attempt int, reason string) {
	payload, err := codec.Encode(order)
	if err != nil {
		// Unencodable orders cannot reach the DLQ topic; keep the view so
		// the failure stays observable.
		p.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("Failed to encode order for DLQ")

		p.stats.RecordDlq(order, reason)
		return
	}

	env := models.Envelope{
		Topic:   p.dlqTopic,
		Key:     order.OrderID,
		Payload: payload,
		Attempt: attempt,
	}

	err = p.publisher.Publish(ctx, env, func(pubErr error) {
		if pubErr != nil {
			p.logger.Error().
				Err(pubErr).
				Str("order_id", order.OrderID).
				Msg("DLQ publish not acknowledged, dead-letter not recorded")
			return
		}
		p.stats.RecordDlq(order, reason)
	})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("Failed to publish order to DLQ topic")
	}
}

// deadLetterRaw forwards an undecodable payload to the dead-letter topic.
// Retrying a malformed payload cannot change the outcome, so it skips the
// retry budget entirely.
func (p *Pipeline) deadLetterRaw(ctx context.Context, msg interfaces.InboundMessage, reason string) {
	order := &models.Order{OrderID: string(msg.Key)}

	env := models.Envelope{
		Topic:   p.dlqTopic,
		Key:     order.OrderID,
		Payload: msg.Value,
		Attempt: msg.Attempt,
	}

	err := p.publisher.Publish(ctx, env, func(pubErr error) {
		if pubErr != nil {
			p.logger.Error().
				Err(pubErr).
				Str("key", order.OrderID).
				Msg("DLQ publish not acknowledged, dead-letter not recorded")
			return
		}
		p.stats.RecordDlq(order, reason)
	})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("key", order.OrderID).
			Msg("Failed to publish malformed payload to DLQ topic")
	}
}

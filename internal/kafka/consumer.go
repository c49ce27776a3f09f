// Package kafka adapts the broker transport: consumer groups feeding
// message handlers and an asynchronous publisher with completion callbacks
package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"orderflow/internal/codec"
	"orderflow/internal/config"
	"orderflow/internal/interfaces"
)

// A Consumer reads one topic on behalf of one consumer group and dispatches
// every record to its handler. Records within the group member are handled
// sequentially in delivery order; the handler owns all failure handling, so
// a bad record never stops the loop.
type Consumer struct {
	reader  *kafka.Reader
	mu      sync.RWMutex
	running bool

	brokers []string
	topic   string
	groupID string

	handler        interfaces.MessageHandler
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *zerolog.Logger
}

// NewConsumer creates a consumer for one topic and group
func NewConsumer(
	cfg config.Config, topic, groupID string, handler interfaces.MessageHandler, logger *zerolog.Logger,
) *Consumer {
	cb := gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        "kafka-consumer-" + topic,
			MaxRequests: uint32(cfg.CircuitBreaker.HalfOpenMaxCalls),
			Interval:    cfg.CircuitBreaker.Timeout,
			Timeout:     cfg.CircuitBreaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.CircuitBreaker.MaxFailers)
			},
		},
	)

	brokers := strings.Split(cfg.Kafka.Listeners, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	return &Consumer{
		brokers:        brokers,
		topic:          topic,
		groupID:        groupID,
		handler:        handler,
		circuitBreaker: cb,
		logger:         logger,
	}
}

// Start opens the reader and launches the consume loop
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("consumer for topic %s is already running", c.topic)
	}

	c.reader = kafka.NewReader(
		kafka.ReaderConfig{
			Brokers:     c.brokers,
			Topic:       c.topic,
			GroupID:     c.groupID,
			StartOffset: kafka.LastOffset,
			MinBytes:    10e3,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
			ErrorLogger: kafka.LoggerFunc(
				func(msg string, args ...interface{}) {
					c.logger.Error().
						Str("kafka_error", fmt.Sprintf(msg, args...)).
						Msg("kafka reader error")
				},
			),
		},
	)

	if strings.TrimSpace(c.groupID) == "" {
		c.logger.Warn().
			Str("topic", c.topic).
			Msg("Kafka group id is empty, offsets will NOT be committed")
	}

	c.running = true

	go c.consume(ctx)

	return nil
}

// Stop closes the reader and ends the consume loop
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	c.running = false

	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Error closing Kafka reader")
			return fmt.Errorf("failed to close Kafka reader: %w", err)
		}
		c.reader = nil
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context) {
	for {
		c.mu.RLock()
		running := c.running
		reader := c.reader
		c.mu.RUnlock()

		if !running || reader == nil {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		result, err := c.circuitBreaker.Execute(
			func() (any, error) {
				defer cancel()
				return reader.FetchMessage(fetchCtx)
			},
		)

		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error().Err(err).Str("topic", c.topic).Msg("Error fetching Kafka message")

			backoffErr := retry.Do(
				func() error {
					return nil
				},
				retry.Attempts(3),
				retry.Delay(1*time.Second),
				retry.DelayType(retry.BackOffDelay),
				retry.MaxDelay(30*time.Second),
				retry.OnRetry(
					func(n uint, err error) {
						c.logger.Warn().
							Uint("attempt", n+1).
							Str("topic", c.topic).
							Msg("Retrying Kafka connection")
					},
				),
				retry.Context(ctx),
			)

			if backoffErr != nil {
				c.logger.Error().Err(backoffErr).Msg("Failed to recover Kafka connection")
				break
			}
			continue
		}
		message := result.(kafka.Message)

		c.handler.HandleMessage(ctx, inbound(message))

		if strings.TrimSpace(c.groupID) != "" {
			commitErr := retry.Do(
				func() error {
					return reader.CommitMessages(ctx, message)
				},
				retry.Attempts(5),
				retry.Delay(500*time.Millisecond),
				retry.DelayType(retry.BackOffDelay),
				retry.Context(ctx),
			)

			if commitErr != nil {
				c.logger.Error().
					Err(commitErr).
					Str("topic", message.Topic).
					Int("partition", message.Partition).
					Int64("offset", message.Offset).
					Msg("Failed to commit message after retries")
			}
		}
	}
}

// inbound converts a fetched record, extracting the retry-attempt header.
// A missing or malformed header reads as attempt 0.
func inbound(message kafka.Message) interfaces.InboundMessage {
	attempt := 0
	for _, header := range message.Headers {
		if header.Key == codec.RetryAttemptHeader {
			attempt = codec.ParseAttempt(header.Value)
		}
	}

	return interfaces.InboundMessage{
		Topic:     message.Topic,
		Partition: message.Partition,
		Offset:    message.Offset,
		Key:       message.Key,
		Value:     message.Value,
		Attempt:   attempt,
	}
}

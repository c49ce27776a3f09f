package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"orderflow/internal/codec"
	"orderflow/internal/models"
)

// messageWriter is the slice of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// A Publisher writes envelopes to their topics without blocking the caller.
// Messages are keyed by order id and hashed to partitions, so one order's
// lifecycle stays on one partition per topic.
type Publisher struct {
	writer messageWriter
	logger *zerolog.Logger
}

// NewPublisher creates a publisher for the given broker listeners
func NewPublisher(listeners string, logger *zerolog.Logger) *Publisher {
	brokers := strings.Split(listeners, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		ErrorLogger: kafka.LoggerFunc(
			func(msg string, args ...interface{}) {
				logger.Error().
					Str("kafka_error", fmt.Sprintf(msg, args...)).
					Msg("kafka writer error")
			},
		),
	}

	return &Publisher{writer: writer, logger: logger}
}

// Publish sends the envelope in a background goroutine and invokes done
// with the write result once the broker acknowledges (or refuses) it. An
// attempt greater than zero rides along as the retry-attempt header.
func (p *Publisher) Publish(ctx context.Context, env models.Envelope, done func(error)) error {
	if env.Topic == "" {
		return errors.New("envelope topic is required")
	}

	message := kafka.Message{
		Topic: env.Topic,
		Key:   []byte(env.Key),
		Value: env.Payload,
	}

	if env.Attempt > 0 {
		message.Headers = append(message.Headers, kafka.Header{
			Key:   codec.RetryAttemptHeader,
			Value: codec.AppendAttempt(env.Attempt),
		})
	}

	// The write must outlive the caller: an HTTP request context is
	// canceled the moment the handler returns, while the writer may still
	// be batching the message.
	writeCtx := context.WithoutCancel(ctx)

	go func() {
		err := p.writer.WriteMessages(writeCtx, message)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("topic", env.Topic).
				Str("key", env.Key).
				Msg("Failed to write Kafka message")
		}
		if done != nil {
			done(err)
		}
	}()

	return nil
}

// Close flushes pending writes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"orderflow/internal/generator"
	"orderflow/internal/kafka"
)

func main() {
	godotenv.Load("deployments/.env")

	count := flag.Int("count", 1, "Number of orders")
	interval := flag.Duration("interval", 0, "Pause between orders")
	flag.Parse()

	listeners := os.Getenv("KAFKA_BROKERS")
	if listeners == "" {
		listeners = "localhost:9092"
	}
	topic := os.Getenv("KAFKA_ORDERS_TOPIC")
	if topic == "" {
		topic = "orders"
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	publisher := kafka.NewPublisher(listeners, &logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Kafka publisher")
		}
	}()

	seed := uint64(time.Now().UnixNano())
	orderSource := generator.New(publisher, topic, rand.New(rand.NewPCG(seed, seed>>1)), &logger)

	ctx := context.Background()
	for i := 0; i < *count; i++ {
		order, err := orderSource.ProduceOrder(ctx)
		if err != nil {
			logger.Error().Err(err).Int("n", i+1).Msg("Failed to produce order")
			continue
		}

		fmt.Printf("Sent order: %s (%s, %.2f)\n", order.OrderID, order.Product, order.Price)

		if *interval > 0 {
			time.Sleep(*interval)
		}
	}

	// Leave time for the asynchronous publishes to flush before the writer
	// closes.
	time.Sleep(time.Second)
}

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/archive"
	"orderflow/internal/config"
	"orderflow/internal/generator"
	"orderflow/internal/interfaces"
	"orderflow/internal/kafka"
	"orderflow/internal/pipeline"
	"orderflow/internal/processing"
	"orderflow/internal/server"
	"orderflow/internal/stats"
)

func main() {
	cfg, err := config.LoadConfig("config/config.yml")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store interfaces.OrderArchive
	var database *archive.DB
	if cfg.Database.Enabled {
		database, err = archive.NewDBWithConfig(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database")
		}

		archiveLogger := logger.With().Str("component", "order-archive").Logger()
		store, err = archive.NewStore(database, cfg.Cache.Capacity, &archiveLogger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize order archive")
		}
	}

	hubLogger := logger.With().Str("component", "stream-hub").Logger()
	hub := server.NewStreamHub(&hubLogger)

	statsLogger := logger.With().Str("component", "aggregator").Logger()
	aggregator, err := stats.New(cfg.Buffers.Capacity, hub, &statsLogger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize aggregator")
	}

	publisherLogger := logger.With().Str("component", "kafka-publisher").Logger()
	publisher := kafka.NewPublisher(cfg.Kafka.Listeners, &publisherLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Kafka publisher")
		}
	}()

	processorLogger := logger.With().Str("component", "processor").Logger()
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	processor := processing.NewSimulated(
		cfg.Simulation.FailureOneIn,
		rand.New(rand.NewPCG(seed, seed>>1)),
		&processorLogger,
	)

	pipelineLogger := logger.With().Str("component", "pipeline").Logger()
	flow := pipeline.New(
		processor, aggregator, publisher, store,
		cfg.Kafka.RetryTopic, cfg.Kafka.DlqTopic, cfg.Retry.MaxAttempts,
		&pipelineLogger,
	)

	generatorLogger := logger.With().Str("component", "generator").Logger()
	orderSource := generator.New(
		publisher, cfg.Kafka.OrdersTopic,
		rand.New(rand.NewPCG(seed>>2, seed>>3)),
		&generatorLogger,
	)

	serverLogger := logger.With().Str("component", "http-server").Logger()
	httpServer := server.New(cfg, aggregator, orderSource, store, hub, &serverLogger)

	primaryLogger := logger.With().Str("component", "kafka-consumer-orders").Logger()
	retryLogger := logger.With().Str("component", "kafka-consumer-retry").Logger()
	dlqLogger := logger.With().Str("component", "kafka-consumer-dlq").Logger()

	consumers := []*kafka.Consumer{
		kafka.NewConsumer(*cfg, cfg.Kafka.OrdersTopic, cfg.Kafka.GroupID,
			pipeline.PrimaryHandler{Pipeline: flow}, &primaryLogger),
		kafka.NewConsumer(*cfg, cfg.Kafka.RetryTopic, cfg.Kafka.GroupID,
			pipeline.RetryHandler{Pipeline: flow}, &retryLogger),
		kafka.NewConsumer(*cfg, cfg.Kafka.DlqTopic, cfg.Kafka.DlqGroupID,
			pipeline.DlqObserver{Logger: &dlqLogger}, &dlqLogger),
	}

	errChan := make(chan error, len(consumers)+1)

	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	for _, consumer := range consumers {
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error().Err(err).Msg("Component failed, shutting down")
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	var stopWg sync.WaitGroup
	var mu sync.Mutex
	var stopErrors []error

	for _, consumer := range consumers {
		stopWg.Add(1)
		go func(c *kafka.Consumer) {
			defer stopWg.Done()
			if err := c.Stop(shutdownCtx); err != nil {
				mu.Lock()
				stopErrors = append(stopErrors, fmt.Errorf("failed to stop Kafka consumer: %w", err))
				mu.Unlock()
			}
		}(consumer)
	}

	stopWg.Add(1)
	go func() {
		defer stopWg.Done()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			mu.Lock()
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop HTTP server: %w", err))
			mu.Unlock()
		}
	}()

	stopWg.Wait()

	if database != nil {
		database.Close()
	}

	if len(stopErrors) > 0 {
		logger.Error().Int("error_count", len(stopErrors)).Msg("Some components failed to stop gracefully")
	}

	cancel()
}

// Package config loads service configuration from YAML and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// A Config represents all configuration of the service
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	Retry          RetryConfig          `yaml:"retry"`
	Buffers        BuffersConfig        `yaml:"buffers"`
	Simulation     SimulationConfig     `yaml:"simulation"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Database       DatabaseConfig       `yaml:"database"`
	Cache          CacheConfig          `yaml:"cache"`
}

// A ServerConfig contains configurations for the HTTP server
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// A KafkaConfig contains topic and group settings for Kafka
type KafkaConfig struct {
	Listeners   string `yaml:"listeners"`
	OrdersTopic string `yaml:"orders_topic"`
	RetryTopic  string `yaml:"retry_topic"`
	DlqTopic    string `yaml:"dlq_topic"`
	GroupID     string `yaml:"group_id"`
	DlqGroupID  string `yaml:"dlq_group_id"`
}

// A RetryConfig bounds the escalation path. MaxAttempts counts retries
// beyond the original delivery.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// A BuffersConfig sizes the recent-orders and DLQ view buffers
type BuffersConfig struct {
	Capacity int `yaml:"capacity"`
}

// A SimulationConfig drives the simulated order processor: one failure per
// FailureOneIn attempts on average; 0 disables failures
type SimulationConfig struct {
	FailureOneIn int    `yaml:"failure_one_in"`
	Seed         uint64 `yaml:"seed"`
}

// A CircuitBreakerConfig represents circuit breaker configurations
type CircuitBreakerConfig struct {
	MaxFailers       int           `yaml:"max_failers"`
	Timeout          time.Duration `yaml:"timeout"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls"`
}

// A DatabaseConfig contains settings for the optional Postgres archive
type DatabaseConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string
	Password           string
	Database           string
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConnections int           `yaml:"max_open_connections"`
	MinOpenConnections int           `yaml:"min_open_connections"`
	HealthCheckPeriod  time.Duration `yaml:"health_check_period"`
}

// A CacheConfig sizes the archive read cache
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoadConfig loads data into a Config structure from a file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.loadEnv()
	return &config, nil
}

// loadEnv loads secrets into the Config structure from environment variables
func (c *Config) loadEnv() {
	err := godotenv.Load("deployments/.env")
	if err != nil {
		return
	}
	c.Database.User = os.Getenv("POSTGRES_USER")
	c.Database.Password = os.Getenv("POSTGRES_PASSWORD")
	c.Database.Database = os.Getenv("POSTGRES_DB")
}

// GetServerAddress returns the listen address for the HTTP server
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate checks if the most important fields are properly filled
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Kafka.Listeners == "" {
		return errors.New("kafka listeners are required")
	}
	if c.Kafka.OrdersTopic == "" || c.Kafka.RetryTopic == "" || c.Kafka.DlqTopic == "" {
		return errors.New("orders, retry and dlq topics are required")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("max retry attempts must be non-negative, got: %d", c.Retry.MaxAttempts)
	}
	if c.Buffers.Capacity <= 0 {
		return errors.New("buffer capacity must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return errors.New("database host is required when the archive is enabled")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Cache.Capacity <= 0 {
			return errors.New("cache capacity must be positive")
		}
	}

	return nil
}

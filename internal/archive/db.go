// Package archive keeps a best-effort durable record of processed orders
// behind a read cache, serving the by-id lookup
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"orderflow/internal/config"
)

// A DB is a wrapper for the database pool
type DB struct {
	pool *pgxpool.Pool
}

// NewDBWithConfig creates a new instance of DB based on the configuration file
func NewDBWithConfig(ctx context.Context, cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("no config was provided")
	}
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s", cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, cfg.Database.SSLMode,
	)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConnections)
	poolCfg.MinConns = int32(cfg.Database.MinOpenConnections)
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	return &DB{pool}, nil
}

// Ping calls the pool's ping
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the connection to the pool
func (db *DB) Close() {
	db.pool.Close()
}

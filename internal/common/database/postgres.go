// internal/common/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PostgresClient holds the sqlx pool shared by the store and the HTTP readiness check.
type PostgresClient struct {
	DB   *sqlx.DB
	name string
}

// NewPostgres opens the pool. It does not dial; call Ping before serving.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("open postgres: %w", err))
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db, name: cfg.Database}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// RegisterMetrics exposes the pool statistics (open, in use, wait time) on reg.
func (c *PostgresClient) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(collectors.NewDBStatsCollector(c.DB.DB, c.name))
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

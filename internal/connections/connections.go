// Package connections opens the Postgres pool shared by the API and the CLI.
package connections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout  = 10 * time.Second
	pingTimeout     = 2 * time.Second
	applicationName = "wrapped"
)

// Client wraps the pgx pool.
type Client struct {
	Pool *pgxpool.Pool
}

func poolConfig(databaseURL string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return cfg, nil
}

// ConnectDB opens the pool and checks that Postgres answers before returning.
func ConnectDB(databaseURL string, logger *slog.Logger) (*Client, error) {
	cfg, err := poolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres did not answer ping: %w", err)
	}

	logger.Info("Postgres pool ready",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
	)
	return &Client{Pool: pool}, nil
}

func (c *Client) Close() {
	c.Pool.Close()
}

// Ping backs the /health check.
func (c *Client) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return c.Pool.Ping(ctx)
}

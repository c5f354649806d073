package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collection-engine/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName          = "collection-engine"
	defaultMaxConns          = 10
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultHealthCheckPeriod = time.Minute
	defaultPingTimeout       = 5 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

// NewConnectionPool opens the pool and fails unless the database answers a ping.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := poolConfigFor(cfg)
	if err != nil {
		return nil, err
	}

	logger = logger.With("component", "postgres", "host", poolConfig.ConnConfig.Host, "db", poolConfig.ConnConfig.Database)
	logger.Info("Opening PostgreSQL connection pool", "maxConns", poolConfig.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := ping(ctx, pool, pingTimeout(cfg), logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("PostgreSQL connection pool ready")
	return pool, nil
}

func poolConfigFor(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is not configured")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	// Shows up in pg_stat_activity next to long-running imports.
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return poolConfig, nil
}

func pingTimeout(cfg config.DatabaseConfig) time.Duration {
	if cfg.PingTimeout > 0 {
		return cfg.PingTimeout
	}
	return defaultPingTimeout
}

func ping(ctx context.Context, db pinger, timeout time.Duration, logger *slog.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.Ping(pingCtx); err != nil {
		logger.Error("Database did not answer ping", slog.Any("error", err))
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

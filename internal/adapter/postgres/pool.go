package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/modqueue-backend/internal/config"
)

// NewPool opens the connection pool and pings the database.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// poolConfig applies cfg to the parsed DSN. Every session gets lock_timeout
// so an approval waiting on a row claimed by another moderator fails instead
// of hanging. Parameters given in the DSN win.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	params := poolCfg.ConnConfig.RuntimeParams
	setDefault := func(key, value string) {
		if _, ok := params[key]; !ok && value != "" {
			params[key] = value
		}
	}
	setDefault("application_name", cfg.ApplicationName)
	if cfg.LockTimeout > 0 {
		setDefault("lock_timeout", strconv.FormatInt(cfg.LockTimeout.Milliseconds(), 10))
	}

	return poolCfg, nil
}

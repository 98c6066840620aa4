package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// NewPool crea el pool de conexiones PostgreSQL. DATABASE_URL tiene prioridad sobre DB_HOST, DB_PORT, etc.
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC -> shopspring/decimal en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("pool PostgreSQL listo")
	return pool, nil
}

// ConnConfig config de una conexión suelta (fuera del pool), usada por el listener del feed.
func ConnConfig(cfg config.DBConfig) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	return cc, nil
}

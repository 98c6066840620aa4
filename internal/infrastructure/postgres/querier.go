package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx; los repositorios no distinguen
// si corren dentro de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner común a pgx.Row y pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

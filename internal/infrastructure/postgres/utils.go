package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// limitOrAll LIMIT NULL equivale a sin límite en PostgreSQL.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

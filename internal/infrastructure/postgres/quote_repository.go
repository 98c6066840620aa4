package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

const quoteColumns = `id, company_id, customer_id, number, status, valid_until, subtotal, tax, total, notes,
	standing_order_id, order_id, created_by, created_at, updated_at`

// QuoteRepo persistencia de cotizaciones y sus líneas.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador.
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

func scanQuote(s scanner) (*entity.Quote, error) {
	var q entity.Quote
	err := s.Scan(&q.ID, &q.CompanyID, &q.CustomerID, &q.Number, &q.Status, &q.ValidUntil,
		&q.Subtotal, &q.Tax, &q.Total, &q.Notes, &q.StandingOrderID, &q.OrderID, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create persiste cabecera y líneas; usar dentro de RunTx para que sea atómico.
func (r *QuoteRepo) Create(ctx context.Context, q *entity.Quote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		q.ID, q.CompanyID, q.CustomerID, q.Number, q.Status, q.ValidUntil,
		q.Subtotal, q.Tax, q.Total, q.Notes, q.StandingOrderID, q.OrderID, q.CreatedBy,
		q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return insertLines(ctx, r.q, quoteLines, q.ID, q.Items)
}

func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	q, err := scanQuote(r.q.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	lines, err := loadLines(ctx, r.q, quoteLines, []string{q.ID})
	if err != nil {
		return nil, err
	}
	q.Items = lines[q.ID]
	return q, nil
}

// UpdateStatus control optimista: solo cambia si el estado actual es from.
func (r *QuoteRepo) UpdateStatus(ctx context.Context, id, from, to string, orderID *string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE quotes SET status = $3, order_id = COALESCE($4, order_id), updated_at = now()
		WHERE id = $1 AND status = $2`, id, from, to, orderID)
	if err != nil {
		return false, fmt.Errorf("update quote status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *QuoteRepo) List(ctx context.Context, f repository.QuoteFilter) ([]*entity.Quote, error) {
	return r.list(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE company_id = $1 AND ($2::text = '' OR customer_id::text = $2) AND ($3::text = '' OR status = $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		f.CompanyID, f.CustomerID, f.Status, limitOrAll(f.Limit), f.Offset)
}

// ListExpired cotizaciones enviadas cuya vigencia terminó antes de today (todas las empresas).
func (r *QuoteRepo) ListExpired(ctx context.Context, today time.Time) ([]*entity.Quote, error) {
	return r.list(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE status = 'sent' AND valid_until < $1::date
		ORDER BY valid_until`, today)
}

func (r *QuoteRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Quote, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	var list []*entity.Quote
	var ids []string
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		list = append(list, q)
		ids = append(ids, q.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	lines, err := loadLines(ctx, r.q, quoteLines, ids)
	if err != nil {
		return nil, err
	}
	for _, q := range list {
		q.Items = lines[q.ID]
	}
	return list, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.StandingOrderRepository = (*StandingOrderRepo)(nil)

const standingColumns = `id, company_id, customer_id, name, frequency, day_of_week, day_of_month, start_date, end_date,
	next_run_date, last_run_at, status, requires_approval, apply_credit, notes, created_by, created_at, updated_at`

const generationColumns = `id, standing_order_id, company_id, scheduled_for, quote_id, status, error, total,
	decided_by, decided_at, created_at`

// StandingOrderRepo persistencia de pedidos recurrentes y de su historial de generación.
type StandingOrderRepo struct {
	q Querier
}

// NewStandingOrderRepository construye el adaptador.
func NewStandingOrderRepository(q Querier) *StandingOrderRepo {
	return &StandingOrderRepo{q: q}
}

func scanStanding(s scanner) (*entity.StandingOrder, error) {
	var so entity.StandingOrder
	err := s.Scan(&so.ID, &so.CompanyID, &so.CustomerID, &so.Name, &so.Frequency, &so.DayOfWeek, &so.DayOfMonth,
		&so.StartDate, &so.EndDate, &so.NextRunDate, &so.LastRunAt, &so.Status, &so.RequiresApproval,
		&so.ApplyCredit, &so.Notes, &so.CreatedBy, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *StandingOrderRepo) Create(ctx context.Context, so *entity.StandingOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO standing_orders (`+standingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		so.ID, so.CompanyID, so.CustomerID, so.Name, so.Frequency, so.DayOfWeek, so.DayOfMonth,
		so.StartDate, so.EndDate, so.NextRunDate, so.LastRunAt, so.Status, so.RequiresApproval,
		so.ApplyCredit, so.Notes, so.CreatedBy, so.CreatedAt, so.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert standing order: %w", err)
	}
	return r.insertItems(ctx, so)
}

func (r *StandingOrderRepo) GetByID(ctx context.Context, id string) (*entity.StandingOrder, error) {
	so, err := scanStanding(r.q.QueryRow(ctx, `SELECT `+standingColumns+` FROM standing_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get standing order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{so.ID})
	if err != nil {
		return nil, err
	}
	so.Items = items[so.ID]
	return so, nil
}

// Update persiste la cabecera y reemplaza las líneas.
func (r *StandingOrderRepo) Update(ctx context.Context, so *entity.StandingOrder) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE standing_orders SET name = $2, frequency = $3, day_of_week = $4, day_of_month = $5,
		       start_date = $6, end_date = $7, next_run_date = $8, last_run_at = $9, status = $10,
		       requires_approval = $11, apply_credit = $12, notes = $13, updated_at = $14
		WHERE id = $1`,
		so.ID, so.Name, so.Frequency, so.DayOfWeek, so.DayOfMonth, so.StartDate, so.EndDate,
		so.NextRunDate, so.LastRunAt, so.Status, so.RequiresApproval, so.ApplyCredit, so.Notes, so.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update standing order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM standing_order_items WHERE standing_order_id = $1`, so.ID); err != nil {
		return fmt.Errorf("delete standing order items: %w", err)
	}
	return r.insertItems(ctx, so)
}

func (r *StandingOrderRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StandingOrder, error) {
	return r.list(ctx, `
		SELECT `+standingColumns+` FROM standing_orders
		WHERE company_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, companyID, status, limitOrAll(limit), offset)
}

// ListDue plantillas activas vencidas a today, de todas las empresas, las más atrasadas primero.
func (r *StandingOrderRepo) ListDue(ctx context.Context, today time.Time) ([]*entity.StandingOrder, error) {
	return r.list(ctx, `
		SELECT `+standingColumns+` FROM standing_orders
		WHERE status = 'active' AND next_run_date IS NOT NULL AND next_run_date <= $1::date
		ORDER BY next_run_date, id`, today)
}

func (r *StandingOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StandingOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list standing orders: %w", err)
	}
	var list []*entity.StandingOrder
	var ids []string
	for rows.Next() {
		so, err := scanStanding(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan standing order: %w", err)
		}
		list = append(list, so)
		ids = append(ids, so.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, so := range list {
		so.Items = items[so.ID]
	}
	return list, nil
}

func (r *StandingOrderRepo) insertItems(ctx context.Context, so *entity.StandingOrder) error {
	for i := range so.Items {
		it := &so.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO standing_order_items (id, standing_order_id, product_id, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5, $6)`, it.ID, so.ID, it.ProductID, it.Quantity, it.UnitPrice, i)
		if err != nil {
			return fmt.Errorf("insert standing order item: %w", err)
		}
	}
	return nil
}

func (r *StandingOrderRepo) loadItems(ctx context.Context, ids []string) (map[string][]entity.StandingOrderItem, error) {
	out := make(map[string][]entity.StandingOrderItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT standing_order_id, id, product_id, quantity, unit_price
		FROM standing_order_items WHERE standing_order_id = ANY($1)
		ORDER BY standing_order_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("list standing order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var parent string
		var it entity.StandingOrderItem
		if err := rows.Scan(&parent, &it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan standing order item: %w", err)
		}
		out[parent] = append(out[parent], it)
	}
	return out, rows.Err()
}

func scanGeneration(s scanner) (*entity.StandingOrderGeneration, error) {
	var g entity.StandingOrderGeneration
	var decidedBy *string
	err := s.Scan(&g.ID, &g.StandingOrderID, &g.CompanyID, &g.ScheduledFor, &g.QuoteID, &g.Status, &g.Error,
		&g.Total, &decidedBy, &g.DecidedAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.DecidedBy = deref(decidedBy)
	return &g, nil
}

// CreateGeneration el índice parcial uq_generation_occurrence garantiza una ocurrencia no fallida por fecha.
func (r *StandingOrderRepo) CreateGeneration(ctx context.Context, g *entity.StandingOrderGeneration) error {
	// ON CONFLICT evita abortar la transacción que envuelve la generación.
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO standing_order_generations (`+generationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (standing_order_id, scheduled_for) WHERE status <> 'failed' DO NOTHING`,
		g.ID, g.StandingOrderID, g.CompanyID, g.ScheduledFor, g.QuoteID, g.Status, g.Error, g.Total,
		nullIfEmpty(g.DecidedBy), g.DecidedAt, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyGenerated
	}
	return nil
}

func (r *StandingOrderRepo) UpdateGeneration(ctx context.Context, g *entity.StandingOrderGeneration) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE standing_order_generations SET quote_id = $2, status = $3, error = $4, total = $5,
		       decided_by = $6, decided_at = $7
		WHERE id = $1`,
		g.ID, g.QuoteID, g.Status, g.Error, g.Total, nullIfEmpty(g.DecidedBy), g.DecidedAt)
	if err != nil {
		return fmt.Errorf("update generation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StandingOrderRepo) GetGeneration(ctx context.Context, id string) (*entity.StandingOrderGeneration, error) {
	g, err := scanGeneration(r.q.QueryRow(ctx,
		`SELECT `+generationColumns+` FROM standing_order_generations WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return g, nil
}

func (r *StandingOrderRepo) ListGenerations(ctx context.Context, standingOrderID string, limit, offset int) ([]*entity.StandingOrderGeneration, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+generationColumns+` FROM standing_order_generations
		WHERE standing_order_id = $1
		ORDER BY scheduled_for DESC, created_at DESC LIMIT $2 OFFSET $3`,
		standingOrderID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StandingOrderGeneration
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

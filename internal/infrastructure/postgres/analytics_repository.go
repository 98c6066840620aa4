package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura del tablero. Cada método es una consulta independiente
// para que el caso de uso las ejecute en paralelo sobre el pool.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) OrdersByStatus(ctx context.Context, companyID string) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM orders WHERE company_id = $1 GROUP BY status`, companyID)
	if err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan orders by status: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// RevenueBetween pedidos confirmados en adelante (sin cancelados) creados en [from, to).
func (r *AnalyticsRepo) RevenueBetween(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE company_id = $1
		  AND status IN ('confirmed', 'processing', 'shipped', 'delivered')
		  AND created_at >= $2 AND created_at < $3`, companyID, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("revenue: %w", err)
	}
	return sum, nil
}

func (r *AnalyticsRepo) OpenQuotes(ctx context.Context, companyID string) (int, decimal.Decimal, error) {
	var n int
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(SUM(total), 0) FROM quotes
		WHERE company_id = $1 AND status IN ('draft', 'sent', 'accepted')`, companyID).Scan(&n, &sum)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("open quotes: %w", err)
	}
	return n, sum, nil
}

func (r *AnalyticsRepo) CreditExposure(ctx context.Context, companyID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM credit_terms WHERE company_id = $1`, companyID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit exposure: %w", err)
	}
	return sum, nil
}

func (r *AnalyticsRepo) OverdueAmount(ctx context.Context, companyID string, today time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(outstanding), 0) FROM credit_ledger
		WHERE company_id = $1 AND type = 'charge' AND outstanding > 0 AND due_date < $2::date`,
		companyID, today).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("overdue amount: %w", err)
	}
	return sum, nil
}

func (r *AnalyticsRepo) StandingOrdersDue(ctx context.Context, companyID string, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM standing_orders
		WHERE company_id = $1 AND status = 'active' AND next_run_date BETWEEN $2::date AND $3::date`,
		companyID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("standing orders due: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, company_id, customer_id, quote_id, number, status, payment_method, payment_status,
	subtotal, tax, total, amount_paid, shipping_address, notes, created_by, created_at, updated_at`

// OrderRepo persistencia de pedidos, líneas e historial de estados.
// Los cambios de estado disparan el trigger trg_orders_status_notify (canal order_events).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(s scanner) (*entity.Order, error) {
	var o entity.Order
	err := s.Scan(&o.ID, &o.CompanyID, &o.CustomerID, &o.QuoteID, &o.Number, &o.Status, &o.PaymentMethod,
		&o.PaymentStatus, &o.Subtotal, &o.Tax, &o.Total, &o.AmountPaid, &o.ShippingAddress, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.CompanyID, o.CustomerID, o.QuoteID, o.Number, o.Status, o.PaymentMethod, o.PaymentStatus,
		o.Subtotal, o.Tax, o.Total, o.AmountPaid, o.ShippingAddress, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return insertLines(ctx, r.q, orderLines, o.ID, o.Items)
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate serializa los pagos concurrentes del mismo pedido.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	lines, err := loadLines(ctx, r.q, orderLines, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = lines[o.ID]
	return o, nil
}

// UpdateStatus control optimista: solo cambia si el estado actual es from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET amount_paid = $2, payment_status = $3, updated_at = $4 WHERE id = $1`,
		o.ID, o.AmountPaid, o.PaymentStatus, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve la página sin líneas y el total de filas que cumplen el filtro.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	const where = `WHERE company_id = $1 AND ($2::text = '' OR customer_id::text = $2) AND ($3::text = '' OR status = $3)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders `+where, f.CompanyID, f.CustomerID, f.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where+`
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		f.CompanyID, f.CustomerID, f.Status, limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func (r *OrderRepo) AddHistory(ctx context.Context, c *entity.OrderStatusChange) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, reason, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.OrderID, c.FromStatus, c.ToStatus, c.ChangedBy, c.Reason, c.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

func (r *OrderRepo) History(ctx context.Context, orderID string) ([]*entity.OrderStatusChange, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, from_status, to_status, changed_by, reason, changed_at
		FROM order_status_history WHERE order_id = $1 ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderStatusChange
	for rows.Next() {
		var c entity.OrderStatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.FromStatus, &c.ToStatus, &c.ChangedBy, &c.Reason, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// CustomerStats excluye borradores y cancelados.
func (r *OrderRepo) CustomerStats(ctx context.Context, customerID string) (repository.CustomerOrderStats, error) {
	var st repository.CustomerOrderStats
	var avg decimal.NullDecimal
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = 'delivered'), round(avg(total), 2)
		FROM orders WHERE customer_id = $1 AND status NOT IN ('draft', 'cancelled')`, customerID,
	).Scan(&st.DeliveredOrders, &avg)
	if err != nil {
		return st, fmt.Errorf("customer order stats: %w", err)
	}
	if avg.Valid {
		st.AverageOrderTotal = avg.Decimal
	}
	return st, nil
}

package memory

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

type quoteRepo struct{ db *DB }

func cloneQuote(q entity.Quote) *entity.Quote {
	q.Items = slices.Clone(q.Items)
	return &q
}

func (r *quoteRepo) Create(_ context.Context, q *entity.Quote) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.quotes[q.ID]; ok {
			return domain.ErrDuplicate
		}
		d.quotes[q.ID] = *cloneQuote(*q)
		return nil
	})
}

func (r *quoteRepo) GetByID(_ context.Context, id string) (*entity.Quote, error) {
	var out *entity.Quote
	r.db.read(func(d *data) {
		if q, ok := d.quotes[id]; ok {
			out = cloneQuote(q)
		}
	})
	return out, nil
}

func (r *quoteRepo) UpdateStatus(_ context.Context, id, from, to string, orderID *string) (bool, error) {
	var ok bool
	err := r.db.write(func(d *data) error {
		q, found := d.quotes[id]
		if !found || q.Status != from {
			return nil
		}
		q.Status = to
		if orderID != nil {
			q.OrderID = ptr(*orderID)
		}
		q.UpdatedAt = time.Now()
		d.quotes[id] = q
		ok = true
		return nil
	})
	return ok, err
}

func (r *quoteRepo) List(_ context.Context, f repository.QuoteFilter) ([]*entity.Quote, error) {
	var list []*entity.Quote
	r.db.read(func(d *data) {
		for _, q := range d.quotes {
			if q.CompanyID != f.CompanyID ||
				(f.CustomerID != "" && q.CustomerID != f.CustomerID) ||
				(f.Status != "" && q.Status != f.Status) {
				continue
			}
			list = append(list, cloneQuote(q))
		}
	})
	slices.SortFunc(list, func(a, b *entity.Quote) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}

func (r *quoteRepo) ListExpired(_ context.Context, today time.Time) ([]*entity.Quote, error) {
	var list []*entity.Quote
	r.db.read(func(d *data) {
		for _, q := range d.quotes {
			if q.Status == entity.QuoteSent && q.ValidUntil.Before(today) {
				list = append(list, cloneQuote(q))
			}
		}
	})
	return list, nil
}

type orderRepo struct{ db *DB }

func cloneOrder(o entity.Order) *entity.Order {
	o.Items = slices.Clone(o.Items)
	return &o
}

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		d.orders[o.ID] = *cloneOrder(*o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	r.db.read(func(d *data) {
		if o, ok := d.orders[id]; ok {
			out = cloneOrder(o)
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: las transacciones en memoria ya son serializables.
func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	var ok bool
	err := r.db.write(func(d *data) error {
		o, found := d.orders[id]
		if !found || o.Status != from {
			return nil
		}
		o.Status = to
		o.UpdatedAt = time.Now()
		d.orders[id] = o
		ok = true
		return nil
	})
	return ok, err
}

func (r *orderRepo) UpdatePayment(_ context.Context, o *entity.Order) error {
	return r.db.write(func(d *data) error {
		cur, ok := d.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.AmountPaid = o.AmountPaid
		cur.PaymentStatus = o.PaymentStatus
		cur.UpdatedAt = o.UpdatedAt
		d.orders[o.ID] = cur
		return nil
	})
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var list []*entity.Order
	r.db.read(func(d *data) {
		for _, o := range d.orders {
			if o.CompanyID != f.CompanyID ||
				(f.CustomerID != "" && o.CustomerID != f.CustomerID) ||
				(f.Status != "" && o.Status != f.Status) {
				continue
			}
			o.Items = nil
			list = append(list, ptr(o))
		}
	})
	slices.SortFunc(list, func(a, b *entity.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *orderRepo) AddHistory(_ context.Context, c *entity.OrderStatusChange) error {
	return r.db.write(func(d *data) error {
		d.history[c.OrderID] = append(d.history[c.OrderID], *c)
		return nil
	})
}

func (r *orderRepo) History(_ context.Context, orderID string) ([]*entity.OrderStatusChange, error) {
	var out []*entity.OrderStatusChange
	r.db.read(func(d *data) {
		for _, c := range d.history[orderID] {
			out = append(out, ptr(c))
		}
	})
	return out, nil
}

func (r *orderRepo) CustomerStats(_ context.Context, customerID string) (repository.CustomerOrderStats, error) {
	var st repository.CustomerOrderStats
	r.db.read(func(d *data) {
		sum := decimal.Zero
		n := 0
		for _, o := range d.orders {
			if o.CustomerID != customerID || o.Status == entity.OrderCancelled || o.Status == entity.OrderDraft {
				continue
			}
			sum = sum.Add(o.Total)
			n++
			if o.Status == entity.OrderDelivered {
				st.DeliveredOrders++
			}
		}
		if n > 0 {
			st.AverageOrderTotal = sum.Div(decimal.NewFromInt(int64(n))).Round(2)
		}
	})
	return st, nil
}

type standingRepo struct{ db *DB }

func cloneStanding(so entity.StandingOrder) *entity.StandingOrder {
	so.Items = slices.Clone(so.Items)
	return &so
}

func (r *standingRepo) Create(_ context.Context, so *entity.StandingOrder) error {
	return r.db.write(func(d *data) error {
		d.standing[so.ID] = *cloneStanding(*so)
		return nil
	})
}

func (r *standingRepo) GetByID(_ context.Context, id string) (*entity.StandingOrder, error) {
	var out *entity.StandingOrder
	r.db.read(func(d *data) {
		if so, ok := d.standing[id]; ok {
			out = cloneStanding(so)
		}
	})
	return out, nil
}

func (r *standingRepo) Update(_ context.Context, so *entity.StandingOrder) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.standing[so.ID]; !ok {
			return domain.ErrNotFound
		}
		d.standing[so.ID] = *cloneStanding(*so)
		return nil
	})
}

func (r *standingRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.StandingOrder, error) {
	var list []*entity.StandingOrder
	r.db.read(func(d *data) {
		for _, so := range d.standing {
			if so.CompanyID == companyID && (status == "" || so.Status == status) {
				list = append(list, cloneStanding(so))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.StandingOrder) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *standingRepo) ListDue(_ context.Context, today time.Time) ([]*entity.StandingOrder, error) {
	var list []*entity.StandingOrder
	r.db.read(func(d *data) {
		for _, so := range d.standing {
			if so.Status == entity.StandingActive && so.NextRunDate != nil && !so.NextRunDate.After(today) {
				list = append(list, cloneStanding(so))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.StandingOrder) int { return a.NextRunDate.Compare(*b.NextRunDate) })
	return list, nil
}

// CreateGeneration aplica la misma unicidad que el índice parcial de PostgreSQL: una fila no fallida
// por (plantilla, fecha).
func (r *standingRepo) CreateGeneration(_ context.Context, g *entity.StandingOrderGeneration) error {
	return r.db.write(func(d *data) error {
		if g.Status != entity.GenerationFailed {
			for _, x := range d.generations {
				if x.StandingOrderID == g.StandingOrderID && x.ScheduledFor.Equal(g.ScheduledFor) && x.Status != entity.GenerationFailed {
					return domain.ErrAlreadyGenerated
				}
			}
		}
		d.generations[g.ID] = *g
		return nil
	})
}

func (r *standingRepo) UpdateGeneration(_ context.Context, g *entity.StandingOrderGeneration) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.generations[g.ID]; !ok {
			return domain.ErrNotFound
		}
		d.generations[g.ID] = *g
		return nil
	})
}

func (r *standingRepo) GetGeneration(_ context.Context, id string) (*entity.StandingOrderGeneration, error) {
	var out *entity.StandingOrderGeneration
	r.db.read(func(d *data) {
		if g, ok := d.generations[id]; ok {
			out = &g
		}
	})
	return out, nil
}

func (r *standingRepo) ListGenerations(_ context.Context, standingOrderID string, limit, offset int) ([]*entity.StandingOrderGeneration, error) {
	var list []*entity.StandingOrderGeneration
	r.db.read(func(d *data) {
		for _, g := range d.generations {
			if g.StandingOrderID == standingOrderID {
				list = append(list, ptr(g))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.StandingOrderGeneration) int {
		if c := b.ScheduledFor.Compare(a.ScheduledFor); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(list, limit, offset), nil
}

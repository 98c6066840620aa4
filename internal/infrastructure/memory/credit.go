package memory

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	domcredit "github.com/jhoicas/Mayorista-api/internal/domain/credit"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

type creditRepo struct{ db *DB }

func (r *creditRepo) CreateTerms(_ context.Context, t *entity.CreditTerms) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.terms {
			if x.CustomerID == t.CustomerID {
				return domain.ErrDuplicate
			}
		}
		d.terms[t.ID] = *t
		return nil
	})
}

func (r *creditRepo) GetTermsByID(_ context.Context, id string) (*entity.CreditTerms, error) {
	var out *entity.CreditTerms
	r.db.read(func(d *data) {
		if t, ok := d.terms[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *creditRepo) GetTermsByCustomer(_ context.Context, customerID string) (*entity.CreditTerms, error) {
	var out *entity.CreditTerms
	r.db.read(func(d *data) {
		for _, t := range d.terms {
			if t.CustomerID == customerID {
				out = ptr(t)
				return
			}
		}
	})
	return out, nil
}

// LockTermsByCustomer en memoria la exclusión la da RunTx.
func (r *creditRepo) LockTermsByCustomer(ctx context.Context, customerID string) (*entity.CreditTerms, error) {
	return r.GetTermsByCustomer(ctx, customerID)
}

func (r *creditRepo) UpdateTerms(_ context.Context, t *entity.CreditTerms) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.terms[t.ID]; !ok {
			return domain.ErrCreditNotFound
		}
		d.terms[t.ID] = *t
		return nil
	})
}

func (r *creditRepo) ListTerms(_ context.Context, companyID, status string, limit, offset int) ([]*entity.CreditTerms, error) {
	var list []*entity.CreditTerms
	r.db.read(func(d *data) {
		for _, t := range d.terms {
			if t.CompanyID == companyID && (status == "" || t.Status == status) {
				list = append(list, ptr(t))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.CreditTerms) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *creditRepo) AddEntry(_ context.Context, e *entity.CreditLedgerEntry) error {
	return r.db.write(func(d *data) error {
		d.seq++
		d.entries[e.ID] = *e
		d.entrySeq[e.ID] = d.seq
		return nil
	})
}

func (r *creditRepo) UpdateOutstanding(_ context.Context, e *entity.CreditLedgerEntry) error {
	return r.db.write(func(d *data) error {
		cur, ok := d.entries[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Outstanding = e.Outstanding
		cur.SettledAt = e.SettledAt
		d.entries[e.ID] = cur
		return nil
	})
}

// entriesWhere devuelve los movimientos que cumplen keep en orden de inserción.
func (r *creditRepo) entriesWhere(keep func(e entity.CreditLedgerEntry) bool) []*entity.CreditLedgerEntry {
	var list []*entity.CreditLedgerEntry
	r.db.read(func(d *data) {
		for _, e := range d.entries {
			if keep(e) {
				list = append(list, ptr(e))
			}
		}
		slices.SortFunc(list, func(a, b *entity.CreditLedgerEntry) int { return d.entrySeq[a.ID] - d.entrySeq[b.ID] })
	})
	return list
}

func (r *creditRepo) ListEntries(_ context.Context, termsID string, limit, offset int) ([]*entity.CreditLedgerEntry, error) {
	list := r.entriesWhere(func(e entity.CreditLedgerEntry) bool { return e.CreditTermsID == termsID })
	slices.Reverse(list)
	return page(list, limit, offset), nil
}

func (r *creditRepo) OpenCharges(_ context.Context, termsID string) ([]*entity.CreditLedgerEntry, error) {
	return r.entriesWhere(func(e entity.CreditLedgerEntry) bool {
		return e.CreditTermsID == termsID && e.Type == entity.LedgerCharge && e.Outstanding.IsPositive()
	}), nil
}

func (r *creditRepo) ChargeByOrder(_ context.Context, orderID string) (*entity.CreditLedgerEntry, error) {
	list := r.entriesWhere(func(e entity.CreditLedgerEntry) bool {
		return e.Type == entity.LedgerCharge && e.OrderID != nil && *e.OrderID == orderID
	})
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func (r *creditRepo) ListOverdueTerms(_ context.Context, today time.Time) ([]*entity.CreditTerms, error) {
	overdue := map[string]bool{}
	for _, e := range r.entriesWhere(func(e entity.CreditLedgerEntry) bool { return domcredit.IsOverdue(&e, today) }) {
		overdue[e.CreditTermsID] = true
	}
	var list []*entity.CreditTerms
	r.db.read(func(d *data) {
		for id := range overdue {
			if t, ok := d.terms[id]; ok && t.Status == entity.CreditActive {
				list = append(list, ptr(t))
			}
		}
	})
	return list, nil
}

func (r *creditRepo) PaymentHistory(_ context.Context, customerID string, today time.Time) (repository.PaymentHistory, error) {
	var h repository.PaymentHistory
	for _, e := range r.entriesWhere(func(e entity.CreditLedgerEntry) bool {
		return e.CustomerID == customerID && e.Type == entity.LedgerCharge
	}) {
		if domcredit.IsOverdue(e, today) {
			h.HasOverdue = true
		}
		if e.SettledAt != nil && e.Outstanding.IsZero() {
			h.SettledCharges++
			if e.DueDate == nil || !e.SettledAt.After(e.DueDate.AddDate(0, 0, 1)) {
				h.SettledOnTime++
			}
		}
	}
	return h, nil
}

type notificationRepo struct{ db *DB }

func (r *notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	return r.db.write(func(d *data) error {
		d.notifications[n.ID] = *n
		return nil
	})
}

func (r *notificationRepo) UpdateDelivery(_ context.Context, n *entity.Notification) error {
	return r.db.write(func(d *data) error {
		cur, ok := d.notifications[n.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = n.Status
		cur.Attempts = n.Attempts
		cur.LastError = n.LastError
		d.notifications[n.ID] = cur
		return nil
	})
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var list []*entity.Notification
	r.db.read(func(d *data) {
		for _, n := range d.notifications {
			if n.UserID != nil && *n.UserID == userID && n.Channel == entity.ChannelInApp && (!unreadOnly || n.ReadAt == nil) {
				list = append(list, ptr(n))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	list, err := r.ListByUser(ctx, userID, true, 0, 0)
	return len(list), err
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID string) error {
	return r.db.write(func(d *data) error {
		n, ok := d.notifications[id]
		if !ok || n.UserID == nil || *n.UserID != userID {
			return domain.ErrNotFound
		}
		if n.ReadAt == nil {
			n.ReadAt = ptr(time.Now())
			d.notifications[id] = n
		}
		return nil
	})
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.write(func(d *data) error {
		now := time.Now()
		for id, n := range d.notifications {
			if n.UserID != nil && *n.UserID == userID && n.ReadAt == nil && n.Channel == entity.ChannelInApp {
				n.ReadAt = &now
				d.notifications[id] = n
				count++
			}
		}
		return nil
	})
	return count, err
}

// Notifications todas las notificaciones (inspección en pruebas).
func (db *DB) Notifications() []entity.Notification {
	var out []entity.Notification
	db.read(func(d *data) {
		for _, n := range d.notifications {
			out = append(out, n)
		}
	})
	slices.SortFunc(out, func(a, b entity.Notification) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

type invoiceRepo struct{ db *DB }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.invoices {
			if x.OrderID == inv.OrderID {
				return domain.ErrDuplicate
			}
		}
		d.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.db.read(func(d *data) {
		if inv, ok := d.invoices[id]; ok {
			out = &inv
		}
	})
	return out, nil
}

func (r *invoiceRepo) GetByOrderID(_ context.Context, orderID string) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.db.read(func(d *data) {
		for _, inv := range d.invoices {
			if inv.OrderID == orderID {
				out = ptr(inv)
				return
			}
		}
	})
	return out, nil
}

func (r *invoiceRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.db.write(func(d *data) error {
		inv, ok := d.invoices[id]
		if !ok {
			return domain.ErrNotFound
		}
		inv.Status = status
		inv.UpdatedAt = time.Now()
		d.invoices[id] = inv
		return nil
	})
}

type paymentRepo struct{ db *DB }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.payments {
			if x.ExternalID == p.ExternalID {
				return domain.ErrDuplicate
			}
		}
		d.payments[p.ID] = *p
		return nil
	})
}

func (r *paymentRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Payment, error) {
	var list []*entity.Payment
	r.db.read(func(d *data) {
		for _, p := range d.payments {
			if p.OrderID == orderID {
				list = append(list, ptr(p))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Payment) int { return a.ReceivedAt.Compare(b.ReceivedAt) })
	return list, nil
}

type documentRepo struct{ db *DB }

func (r *documentRepo) Upsert(_ context.Context, doc *entity.Document) error {
	return r.db.write(func(d *data) error {
		key := doc.OrderID + "/" + doc.Kind
		if cur, ok := d.documents[key]; ok {
			doc.ID = cur.ID
		}
		d.documents[key] = *doc
		return nil
	})
}

func (r *documentRepo) GetByOrderAndKind(_ context.Context, orderID, kind string) (*entity.Document, error) {
	var out *entity.Document
	r.db.read(func(d *data) {
		if doc, ok := d.documents[orderID+"/"+kind]; ok {
			out = &doc
		}
	})
	return out, nil
}

type analyticsRepo struct{ db *DB }

// revenueStatuses estados que cuentan como venta del mes.
var revenueStatuses = map[string]bool{
	entity.OrderConfirmed:  true,
	entity.OrderProcessing: true,
	entity.OrderShipped:    true,
	entity.OrderDelivered:  true,
}

func (r *analyticsRepo) OrdersByStatus(_ context.Context, companyID string) (map[string]int, error) {
	out := map[string]int{}
	r.db.read(func(d *data) {
		for _, o := range d.orders {
			if o.CompanyID == companyID {
				out[o.Status]++
			}
		}
	})
	return out, nil
}

func (r *analyticsRepo) RevenueBetween(_ context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.db.read(func(d *data) {
		for _, o := range d.orders {
			if o.CompanyID == companyID && revenueStatuses[o.Status] && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
				sum = sum.Add(o.Total)
			}
		}
	})
	return sum, nil
}

func (r *analyticsRepo) OpenQuotes(_ context.Context, companyID string) (int, decimal.Decimal, error) {
	n, sum := 0, decimal.Zero
	r.db.read(func(d *data) {
		for _, q := range d.quotes {
			if q.CompanyID == companyID && (q.Status == entity.QuoteDraft || q.Status == entity.QuoteSent || q.Status == entity.QuoteAccepted) {
				n++
				sum = sum.Add(q.Total)
			}
		}
	})
	return n, sum, nil
}

func (r *analyticsRepo) CreditExposure(_ context.Context, companyID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.db.read(func(d *data) {
		for _, t := range d.terms {
			if t.CompanyID == companyID {
				sum = sum.Add(t.Balance)
			}
		}
	})
	return sum, nil
}

func (r *analyticsRepo) OverdueAmount(_ context.Context, companyID string, today time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.db.read(func(d *data) {
		for _, e := range d.entries {
			if e.CompanyID == companyID && domcredit.IsOverdue(&e, today) {
				sum = sum.Add(e.Outstanding)
			}
		}
	})
	return sum, nil
}

func (r *analyticsRepo) StandingOrdersDue(_ context.Context, companyID string, from, to time.Time) (int, error) {
	n := 0
	r.db.read(func(d *data) {
		for _, so := range d.standing {
			if so.CompanyID == companyID && so.Status == entity.StandingActive && so.NextRunDate != nil &&
				!so.NextRunDate.Before(from) && !so.NextRunDate.After(to) {
				n++
			}
		}
	})
	return n, nil
}

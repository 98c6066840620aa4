package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.CreditRepository = (*CreditRepo)(nil)

const termsColumns = `id, company_id, customer_id, status, credit_limit, balance, payment_terms_days,
	eligibility_score, suspension_reason, approved_by, approved_at, created_at, updated_at`

const entryColumns = `id, credit_terms_id, company_id, customer_id, order_id, type, amount, outstanding,
	balance_after, due_date, settled_at, description, created_by, created_at`

// CreditRepo términos de crédito y libro de movimientos.
type CreditRepo struct {
	q Querier
}

// NewCreditRepository construye el adaptador.
func NewCreditRepository(q Querier) *CreditRepo {
	return &CreditRepo{q: q}
}

func scanTerms(s scanner) (*entity.CreditTerms, error) {
	var t entity.CreditTerms
	var approvedBy *string
	err := s.Scan(&t.ID, &t.CompanyID, &t.CustomerID, &t.Status, &t.CreditLimit, &t.Balance, &t.PaymentTermsDays,
		&t.EligibilityScore, &t.SuspensionReason, &approvedBy, &t.ApprovedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ApprovedBy = deref(approvedBy)
	return &t, nil
}

func scanEntry(s scanner) (*entity.CreditLedgerEntry, error) {
	var e entity.CreditLedgerEntry
	err := s.Scan(&e.ID, &e.CreditTermsID, &e.CompanyID, &e.CustomerID, &e.OrderID, &e.Type, &e.Amount,
		&e.Outstanding, &e.BalanceAfter, &e.DueDate, &e.SettledAt, &e.Description, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateTerms un cliente tiene a lo sumo unos términos (UNIQUE customer_id).
func (r *CreditRepo) CreateTerms(ctx context.Context, t *entity.CreditTerms) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO credit_terms (`+termsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.CompanyID, t.CustomerID, t.Status, t.CreditLimit, t.Balance, t.PaymentTermsDays,
		t.EligibilityScore, t.SuspensionReason, nullIfEmpty(t.ApprovedBy), t.ApprovedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit terms: %w", err)
	}
	return nil
}

func (r *CreditRepo) getTerms(ctx context.Context, query, arg string) (*entity.CreditTerms, error) {
	t, err := scanTerms(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit terms: %w", err)
	}
	return t, nil
}

func (r *CreditRepo) GetTermsByID(ctx context.Context, id string) (*entity.CreditTerms, error) {
	return r.getTerms(ctx, `SELECT `+termsColumns+` FROM credit_terms WHERE id = $1`, id)
}

func (r *CreditRepo) GetTermsByCustomer(ctx context.Context, customerID string) (*entity.CreditTerms, error) {
	return r.getTerms(ctx, `SELECT `+termsColumns+` FROM credit_terms WHERE customer_id = $1`, customerID)
}

// LockTermsByCustomer serializa cargos y pagos concurrentes del mismo cliente.
func (r *CreditRepo) LockTermsByCustomer(ctx context.Context, customerID string) (*entity.CreditTerms, error) {
	return r.getTerms(ctx, `SELECT `+termsColumns+` FROM credit_terms WHERE customer_id = $1 FOR UPDATE`, customerID)
}

func (r *CreditRepo) UpdateTerms(ctx context.Context, t *entity.CreditTerms) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE credit_terms SET status = $2, credit_limit = $3, balance = $4, payment_terms_days = $5,
		       eligibility_score = $6, suspension_reason = $7, approved_by = $8, approved_at = $9, updated_at = $10
		WHERE id = $1`,
		t.ID, t.Status, t.CreditLimit, t.Balance, t.PaymentTermsDays, t.EligibilityScore, t.SuspensionReason,
		nullIfEmpty(t.ApprovedBy), t.ApprovedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update credit terms: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCreditNotFound
	}
	return nil
}

func (r *CreditRepo) ListTerms(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.CreditTerms, error) {
	return r.listTerms(ctx, `
		SELECT `+termsColumns+` FROM credit_terms
		WHERE company_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, companyID, status, limitOrAll(limit), offset)
}

// ListOverdueTerms términos activos con algún cargo pendiente vencido antes de today.
func (r *CreditRepo) ListOverdueTerms(ctx context.Context, today time.Time) ([]*entity.CreditTerms, error) {
	return r.listTerms(ctx, `
		SELECT `+termsColumns+` FROM credit_terms t
		WHERE t.status = 'active' AND EXISTS (
			SELECT 1 FROM credit_ledger l
			WHERE l.credit_terms_id = t.id AND l.type = 'charge' AND l.outstanding > 0 AND l.due_date < $1::date
		)
		ORDER BY t.created_at`, today)
}

func (r *CreditRepo) listTerms(ctx context.Context, query string, args ...any) ([]*entity.CreditTerms, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit terms: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditTerms
	for rows.Next() {
		t, err := scanTerms(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit terms: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *CreditRepo) AddEntry(ctx context.Context, e *entity.CreditLedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO credit_ledger (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.CreditTermsID, e.CompanyID, e.CustomerID, e.OrderID, e.Type, e.Amount, e.Outstanding,
		e.BalanceAfter, e.DueDate, e.SettledAt, e.Description, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit ledger entry: %w", err)
	}
	return nil
}

func (r *CreditRepo) UpdateOutstanding(ctx context.Context, e *entity.CreditLedgerEntry) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE credit_ledger SET outstanding = $2, settled_at = $3 WHERE id = $1`, e.ID, e.Outstanding, e.SettledAt)
	if err != nil {
		return fmt.Errorf("update outstanding: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListEntries movimientos del más reciente al más antiguo.
func (r *CreditRepo) ListEntries(ctx context.Context, termsID string, limit, offset int) ([]*entity.CreditLedgerEntry, error) {
	return r.listEntries(ctx, `
		SELECT `+entryColumns+` FROM credit_ledger WHERE credit_terms_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`, termsID, limitOrAll(limit), offset)
}

// OpenCharges cargos con saldo, en orden de registro (FIFO para aplicar pagos).
func (r *CreditRepo) OpenCharges(ctx context.Context, termsID string) ([]*entity.CreditLedgerEntry, error) {
	return r.listEntries(ctx, `
		SELECT `+entryColumns+` FROM credit_ledger
		WHERE credit_terms_id = $1 AND type = 'charge' AND outstanding > 0
		ORDER BY seq`, termsID)
}

func (r *CreditRepo) ChargeByOrder(ctx context.Context, orderID string) (*entity.CreditLedgerEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM credit_ledger
		WHERE order_id = $1 AND type = 'charge' ORDER BY seq DESC LIMIT 1`, orderID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get charge by order: %w", err)
	}
	return e, nil
}

func (r *CreditRepo) listEntries(ctx context.Context, query string, args ...any) ([]*entity.CreditLedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditLedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// PaymentHistory un cargo se pagó a tiempo si se saldó a más tardar el día de su vencimiento.
func (r *CreditRepo) PaymentHistory(ctx context.Context, customerID string, today time.Time) (repository.PaymentHistory, error) {
	var h repository.PaymentHistory
	err := r.q.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE settled_at IS NOT NULL AND outstanding = 0),
			count(*) FILTER (WHERE settled_at IS NOT NULL AND outstanding = 0
			                   AND (due_date IS NULL OR settled_at < due_date + 1)),
			COALESCE(bool_or(outstanding > 0 AND due_date < $2::date), false)
		FROM credit_ledger
		WHERE customer_id = $1 AND type = 'charge'`, customerID, today,
	).Scan(&h.SettledCharges, &h.SettledOnTime, &h.HasOverdue)
	if err != nil {
		return h, fmt.Errorf("payment history: %w", err)
	}
	return h, nil
}

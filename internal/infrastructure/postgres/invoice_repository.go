package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository  = (*InvoiceRepo)(nil)
	_ repository.PaymentRepository  = (*PaymentRepo)(nil)
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
)

const invoiceColumns = `id, company_id, order_id, customer_id, number, status, issue_date, due_date,
	subtotal, tax, total, created_at, updated_at`

// InvoiceRepo facturas (una por pedido).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(s scanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := s.Scan(&inv.ID, &inv.CompanyID, &inv.OrderID, &inv.CustomerID, &inv.Number, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create devuelve domain.ErrDuplicate si el pedido ya tiene factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (order_id) DO NOTHING`,
		inv.ID, inv.CompanyID, inv.OrderID, inv.CustomerID, inv.Number, inv.Status, inv.IssueDate, inv.DueDate,
		inv.Subtotal, inv.Tax, inv.Total, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (r *InvoiceRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1`, orderID)
}

func (r *InvoiceRepo) get(ctx context.Context, query string, arg string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PaymentRepo pagos recibidos de la pasarela.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create usa ON CONFLICT para no abortar la transacción del webhook ante un evento repetido.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, company_id, order_id, external_id, amount, method, status, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO NOTHING`,
		p.ID, p.CompanyID, p.OrderID, p.ExternalID, p.Amount, p.Method, p.Status, p.ReceivedAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, external_id, amount, method, status, received_at, created_at
		FROM payments WHERE order_id = $1 ORDER BY received_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.OrderID, &p.ExternalID, &p.Amount, &p.Method,
			&p.Status, &p.ReceivedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// DocumentRepo metadatos de los PDF por pedido.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Upsert conserva el id original al regenerar el documento.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *entity.Document) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO documents (id, company_id, order_id, kind, storage_key, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id, kind) DO UPDATE
		SET storage_key = EXCLUDED.storage_key, content_type = EXCLUDED.content_type,
		    size = EXCLUDED.size, created_at = EXCLUDED.created_at
		RETURNING id`,
		doc.ID, doc.CompanyID, doc.OrderID, doc.Kind, doc.StorageKey, doc.ContentType, doc.Size, doc.CreatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetByOrderAndKind(ctx context.Context, orderID, kind string) (*entity.Document, error) {
	var d entity.Document
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, order_id, kind, storage_key, content_type, size, created_at
		FROM documents WHERE order_id = $1 AND kind = $2`, orderID, kind,
	).Scan(&d.ID, &d.CompanyID, &d.OrderID, &d.Kind, &d.StorageKey, &d.ContentType, &d.Size, &d.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

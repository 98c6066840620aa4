package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice (una por pedido).
type InvoiceRepository interface {
	// Create devuelve domain.ErrDuplicate si el pedido ya tiene factura.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	// Create devuelve domain.ErrDuplicate si ExternalID ya fue registrado.
	Create(ctx context.Context, payment *entity.Payment) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Payment, error)
}

// DocumentRepository metadatos de los PDF generados por pedido.
type DocumentRepository interface {
	// Upsert reemplaza el documento del mismo (order_id, kind).
	Upsert(ctx context.Context, doc *entity.Document) error
	GetByOrderAndKind(ctx context.Context, orderID, kind string) (*entity.Document, error)
}

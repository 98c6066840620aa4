package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// DocumentRenderer genera los PDF de un pedido.
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, invoice *entity.Invoice, order *entity.Order, company *entity.Company, customer *entity.Customer) ([]byte, error)
	RenderPackingList(ctx context.Context, order *entity.Order, company *entity.Company, customer *entity.Customer) ([]byte, error)
}

// DocumentStore guarda el contenido binario de los documentos (bucket S3 o PostgreSQL).
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// IdempotencyStore marca eventos externos ya procesados.
// MarkProcessed devuelve false si la clave ya estaba marcada.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// CreditPayments aplica pagos de pedidos a crédito al libro del cliente.
type CreditPayments interface {
	RecordPaymentInTx(ctx context.Context, tx repository.Store, customerID string, amount decimal.Decimal, orderID *string, userID string) error
}

// Notifier avisos internos.
type Notifier interface {
	NotifyRole(ctx context.Context, companyID, role, kind, title, body string) error
}

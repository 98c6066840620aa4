package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Invoice.
const (
	InvoiceIssued = "issued"
	InvoicePaid   = "paid"
	InvoiceVoid   = "void"
)

// Invoice factura emitida al confirmar un pedido (una por pedido).
type Invoice struct {
	ID         string
	CompanyID  string
	OrderID    string
	CustomerID string
	Number     string // FAC-YYYYMMDD-xxxxxx
	Status     string
	IssueDate  time.Time
	DueDate    time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Order.
const (
	OrderDraft      = "draft"
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Medios y estados de pago.
const (
	PaymentMethodCredit  = "credit"
	PaymentMethodPrepaid = "prepaid"

	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// Order pedido mayorista.
type Order struct {
	ID              string
	CompanyID       string
	CustomerID      string
	QuoteID         *string
	Number          string // PED-YYYYMMDD-xxxxxx
	Status          string
	PaymentMethod   string
	PaymentStatus   string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	ShippingAddress string
	Notes           string
	CreatedBy       string
	Items           []LineItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderStatusChange fila del historial de estados de un pedido.
type OrderStatusChange struct {
	ID         string
	OrderID    string
	FromStatus string
	ToStatus   string
	ChangedBy  string
	Reason     string
	ChangedAt  time.Time
}

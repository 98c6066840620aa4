package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea de cotización o pedido. UnitPrice cero = precio del catálogo.
type LineItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineItemResponse línea en respuestas.
type LineItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
}

// CreateQuoteRequest body para POST /api/quotes.
type CreateQuoteRequest struct {
	CustomerID   string            `json:"customer_id" validate:"required,uuid"`
	ValidityDays int               `json:"validity_days" validate:"min=0,max=365"` // 0 = 15 días
	Notes        string            `json:"notes"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ConvertQuoteRequest body para POST /api/quotes/:id/convert.
type ConvertQuoteRequest struct {
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=credit prepaid"`
	ShippingAddress string `json:"shipping_address"`
}

// QuoteResponse cotización con líneas.
type QuoteResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	Number          string             `json:"number"`
	Status          string             `json:"status"`
	ValidUntil      time.Time          `json:"valid_until"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	Notes           string             `json:"notes,omitempty"`
	StandingOrderID *string            `json:"standing_order_id,omitempty"`
	OrderID         *string            `json:"order_id,omitempty"`
	Items           []LineItemResponse `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID      string            `json:"customer_id" validate:"required,uuid"`
	PaymentMethod   string            `json:"payment_method" validate:"required,oneof=credit prepaid"`
	ShippingAddress string            `json:"shipping_address"`
	Notes           string            `json:"notes"`
	Draft           bool              `json:"draft"` // true = queda en borrador (sin aplicar crédito)
	Items           []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft pending confirmed processing shipped delivered cancelled"`
	Reason string `json:"reason" validate:"max=500"`
}

// BulkUpdateStatusRequest body para POST /api/orders/bulk-status.
type BulkUpdateStatusRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,max=100,dive,required"`
	Status   string   `json:"status" validate:"required,oneof=draft pending confirmed processing shipped delivered cancelled"`
	Reason   string   `json:"reason" validate:"max=500"`
}

// BulkFailure id rechazado en una actualización masiva.
type BulkFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"` // INVALID_TRANSITION, NOT_FOUND, FORBIDDEN, CREDIT_REJECTED, INTERNAL
	Detail  string `json:"detail,omitempty"`
}

// BulkUpdateStatusResponse resultado de la actualización masiva.
type BulkUpdateStatusResponse struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// OrderResponse pedido con líneas.
type OrderResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	QuoteID         *string            `json:"quote_id,omitempty"`
	Number          string             `json:"number"`
	Status          string             `json:"status"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentStatus   string             `json:"payment_status"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	AllowedStatuses []string           `json:"allowed_statuses"`
	Items           []LineItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderStatusChangeResponse fila del historial.
type OrderStatusChangeResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

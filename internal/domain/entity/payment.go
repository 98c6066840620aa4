package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment pago recibido desde la pasarela (ExternalID único).
type Payment struct {
	ID         string
	CompanyID  string
	OrderID    string
	ExternalID string
	Amount     decimal.Decimal
	Method     string
	Status     string // succeeded, failed
	ReceivedAt time.Time
	CreatedAt  time.Time
}

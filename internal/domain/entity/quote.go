package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Quote.
const (
	QuoteDraft     = "draft"
	QuoteSent      = "sent"
	QuoteAccepted  = "accepted"
	QuoteRejected  = "rejected"
	QuoteExpired   = "expired"
	QuoteConverted = "converted"
)

// Quote cotización (oportunidad) enviada a un cliente.
type Quote struct {
	ID              string
	CompanyID       string
	CustomerID      string
	Number          string // COT-YYYYMMDD-xxxxxx
	Status          string
	ValidUntil      time.Time
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	StandingOrderID *string
	OrderID         *string
	CreatedBy       string
	Items           []LineItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

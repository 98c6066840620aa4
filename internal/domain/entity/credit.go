package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de CreditTerms.
const (
	CreditPending   = "pending"
	CreditActive    = "active"
	CreditSuspended = "suspended"
	CreditRejected  = "rejected"
)

// Tipos de movimiento del libro de crédito.
const (
	LedgerCharge     = "charge"
	LedgerPayment    = "payment"
	LedgerRelease    = "release"
	LedgerAdjustment = "adjustment"
)

// SuspensionOverdue razón usada por el escaneo de cartera vencida.
const SuspensionOverdue = "overdue"

// CreditTerms cupo de crédito de un cliente (uno por cliente).
type CreditTerms struct {
	ID               string
	CompanyID        string
	CustomerID       string
	Status           string
	CreditLimit      decimal.Decimal
	Balance          decimal.Decimal // saldo pendiente
	PaymentTermsDays int
	EligibilityScore int
	SuspensionReason string
	ApprovedBy       string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available crédito disponible (límite - saldo), nunca negativo.
func (t *CreditTerms) Available() decimal.Decimal {
	a := t.CreditLimit.Sub(t.Balance)
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}

// CreditLedgerEntry movimiento del libro de crédito.
type CreditLedgerEntry struct {
	ID            string
	CreditTermsID string
	CompanyID     string
	CustomerID    string
	OrderID       *string
	Type          string
	Amount        decimal.Decimal
	Outstanding   decimal.Decimal // solo cargos: parte aún no pagada ni liberada
	BalanceAfter  decimal.Decimal
	DueDate       *time.Time // solo cargos
	SettledAt     *time.Time // cargos: momento en que Outstanding llegó a cero
	Description   string
	CreatedBy     string
	CreatedAt     time.Time
}

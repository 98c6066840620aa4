package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestCreditRequest body para POST /api/credit/requests.
type RequestCreditRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
}

// ApproveCreditRequest body para POST /api/credit/:id/approve.
type ApproveCreditRequest struct {
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays int             `json:"payment_terms_days" validate:"required,min=1,max=180"`
}

// SuspendCreditRequest body para POST /api/credit/:id/suspend.
type SuspendCreditRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AdjustLimitRequest body para POST /api/credit/:id/limit.
type AdjustLimitRequest struct {
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Reason      string          `json:"reason" validate:"max=500"`
}

// CreditTermsResponse términos de crédito con disponible.
type CreditTermsResponse struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	Status           string          `json:"status"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	Balance          decimal.Decimal `json:"balance"`
	Available        decimal.Decimal `json:"available"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	EligibilityScore int             `json:"eligibility_score"`
	SuggestedLimit   decimal.Decimal `json:"suggested_limit"`
	SuspensionReason string          `json:"suspension_reason,omitempty"`
	ApprovedBy       string          `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LedgerEntryResponse movimiento del libro de crédito.
type LedgerEntryResponse struct {
	ID           string          `json:"id"`
	OrderID      *string         `json:"order_id,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	DueDate      *string         `json:"due_date,omitempty"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

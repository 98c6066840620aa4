package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frecuencias de StandingOrder.
const (
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// Estados de StandingOrder.
const (
	StandingActive    = "active"
	StandingPaused    = "paused"
	StandingCancelled = "cancelled"
	StandingCompleted = "completed"
)

// Resultado de una generación.
const (
	GenerationGenerated       = "generated"
	GenerationPendingApproval = "pending_approval"
	GenerationCreditHold      = "credit_hold"
	GenerationFailed          = "failed"
	GenerationApproved        = "approved"
	GenerationRejected        = "rejected"
)

// StandingOrder plantilla de pedido recurrente que genera cotizaciones en borrador.
type StandingOrder struct {
	ID               string
	CompanyID        string
	CustomerID       string
	Name             string
	Frequency        string
	DayOfWeek        *int // 0=domingo..6 (weekly, biweekly)
	DayOfMonth       *int // 1..31 (monthly, quarterly)
	StartDate        time.Time
	EndDate          *time.Time
	NextRunDate      *time.Time // nil cuando está completed/cancelled
	LastRunAt        *time.Time
	Status           string
	RequiresApproval bool
	ApplyCredit      bool
	Notes            string
	CreatedBy        string
	Items            []StandingOrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StandingOrderItem línea de la plantilla. UnitPrice nil = precio del catálogo al generar.
type StandingOrderItem struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// StandingOrderGeneration registro de una ocurrencia materializada (única por fecha programada).
type StandingOrderGeneration struct {
	ID              string
	StandingOrderID string
	CompanyID       string
	ScheduledFor    time.Time
	QuoteID         *string
	Status          string
	Error           string
	Total           decimal.Decimal
	DecidedBy       string
	DecidedAt       *time.Time
	CreatedAt       time.Time
}

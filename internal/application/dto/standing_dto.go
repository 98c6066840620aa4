package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StandingItemRequest línea de plantilla. UnitPrice nil = precio de catálogo al generar.
type StandingItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateStandingOrderRequest body para POST /api/standing-orders.
type CreateStandingOrderRequest struct {
	CustomerID       string                `json:"customer_id" validate:"required,uuid"`
	Name             string                `json:"name" validate:"required,max=200"`
	Frequency        string                `json:"frequency" validate:"required,oneof=weekly biweekly monthly quarterly"`
	DayOfWeek        *int                  `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	DayOfMonth       *int                  `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	StartDate        string                `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string                `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RequiresApproval bool                  `json:"requires_approval"`
	ApplyCredit      bool                  `json:"apply_credit"`
	Notes            string                `json:"notes"`
	Items            []StandingItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateStandingOrderRequest body para PUT /api/standing-orders/:id (parcial).
type UpdateStandingOrderRequest struct {
	Name             *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Frequency        *string               `json:"frequency" validate:"omitempty,oneof=weekly biweekly monthly quarterly"`
	DayOfWeek        *int                  `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	DayOfMonth       *int                  `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	EndDate          *string               `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	RequiresApproval *bool                 `json:"requires_approval"`
	ApplyCredit      *bool                 `json:"apply_credit"`
	Notes            *string               `json:"notes"`
	Items            []StandingItemRequest `json:"items" validate:"omitempty,dive"`
}

// StandingOrderResponse plantilla en respuestas.
type StandingOrderResponse struct {
	ID               string                 `json:"id"`
	CustomerID       string                 `json:"customer_id"`
	Name             string                 `json:"name"`
	Frequency        string                 `json:"frequency"`
	DayOfWeek        *int                   `json:"day_of_week,omitempty"`
	DayOfMonth       *int                   `json:"day_of_month,omitempty"`
	StartDate        string                 `json:"start_date"`
	EndDate          *string                `json:"end_date,omitempty"`
	NextRunDate      *string                `json:"next_run_date,omitempty"`
	LastRunAt        *time.Time             `json:"last_run_at,omitempty"`
	Status           string                 `json:"status"`
	RequiresApproval bool                   `json:"requires_approval"`
	ApplyCredit      bool                   `json:"apply_credit"`
	Notes            string                 `json:"notes,omitempty"`
	Items            []StandingItemResponse `json:"items"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// StandingItemResponse línea de plantilla.
type StandingItemResponse struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// GenerationResponse fila del historial de generación.
type GenerationResponse struct {
	ID              string          `json:"id"`
	StandingOrderID string          `json:"standing_order_id"`
	ScheduledFor    string          `json:"scheduled_for"`
	QuoteID         *string         `json:"quote_id,omitempty"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	Total           decimal.Decimal `json:"total"`
	DecidedBy       string          `json:"decided_by,omitempty"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RunDueResponse resumen de una corrida del generador.
type RunDueResponse struct {
	Processed int `json:"processed"`
	Generated int `json:"generated"`
	Pending   int `json:"pending_approval"`
	OnHold    int `json:"credit_hold"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	OrdersByStatus map[string]int `json:"orders_by_status"`

	// Ingresos del mes en curso (pedidos confirmados en adelante, sin cancelados)
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`

	OpenQuotes      int             `json:"open_quotes"`
	OpenQuotesValue decimal.Decimal `json:"open_quotes_value"`

	CreditExposure decimal.Decimal `json:"credit_exposure"` // suma de saldos
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`

	StandingOrdersDueSoon int `json:"standing_orders_due_7d"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository consultas agregadas del tablero (solo lectura).
type AnalyticsRepository interface {
	OrdersByStatus(ctx context.Context, companyID string) (map[string]int, error)
	RevenueBetween(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error)
	OpenQuotes(ctx context.Context, companyID string) (count int, value decimal.Decimal, err error)
	CreditExposure(ctx context.Context, companyID string) (decimal.Decimal, error)
	OverdueAmount(ctx context.Context, companyID string, today time.Time) (decimal.Decimal, error)
	StandingOrdersDue(ctx context.Context, companyID string, from, to time.Time) (int, error)
}

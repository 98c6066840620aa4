package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

func TestGetSummary_AgregaLaEmpresa(t *testing.T) {
	db := memory.NewDB()
	store := db.Store()
	ctx := context.Background()
	company, other := uuid.NewString(), uuid.NewString()
	now := time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC)

	orders := []entity.Order{
		{CompanyID: company, Status: entity.OrderConfirmed, Total: decimal.NewFromInt(1000), CreatedAt: now},
		{CompanyID: company, Status: entity.OrderDelivered, Total: decimal.NewFromFloat(250.555), CreatedAt: now.AddDate(0, 0, -3)},
		{CompanyID: company, Status: entity.OrderCancelled, Total: decimal.NewFromInt(900), CreatedAt: now},
		{CompanyID: company, Status: entity.OrderShipped, Total: decimal.NewFromInt(700), CreatedAt: now.AddDate(0, -1, 0)},
		{CompanyID: other, Status: entity.OrderConfirmed, Total: decimal.NewFromInt(5000), CreatedAt: now},
	}
	for i := range orders {
		orders[i].ID = uuid.NewString()
		require.NoError(t, store.Orders.Create(ctx, &orders[i]))
	}
	for _, status := range []string{entity.QuoteSent, entity.QuoteRejected} {
		require.NoError(t, store.Quotes.Create(ctx, &entity.Quote{ID: uuid.NewString(), CompanyID: company, Status: status, Total: decimal.NewFromInt(300)}))
	}
	next := now.AddDate(0, 0, 2)
	require.NoError(t, store.StandingOrders.Create(ctx, &entity.StandingOrder{ID: uuid.NewString(), CompanyID: company, Status: entity.StandingActive, NextRunDate: &next}))

	uc := NewDashboardUseCase(db.Analytics())
	uc.now = func() time.Time { return now }
	out, err := uc.GetSummary(ctx, company)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{entity.OrderConfirmed: 1, entity.OrderDelivered: 1, entity.OrderCancelled: 1, entity.OrderShipped: 1}, out.OrdersByStatus)
	assert.Equal(t, "1250.56", out.MonthlyRevenue.StringFixed(2))
	assert.Equal(t, 1, out.OpenQuotes)
	assert.True(t, out.OpenQuotesValue.Equal(decimal.NewFromInt(300)))
	assert.True(t, out.CreditExposure.IsZero())
	assert.Equal(t, 1, out.StandingOrdersDueSoon)
	assert.Equal(t, "Febrero 2026", out.DateLabel)
}

type failingAnalytics struct{ repository.AnalyticsRepository }

func (failingAnalytics) CreditExposure(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("conexión perdida")
}

func TestGetSummary_PropagaErrores(t *testing.T) {
	uc := NewDashboardUseCase(failingAnalytics{memory.NewDB().Analytics()})
	_, err := uc.GetSummary(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exposición de crédito")
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Diciembre 2025", monthLabel(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

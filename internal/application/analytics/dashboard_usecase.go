// Package analytics contiene el caso de uso del tablero comercial.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

const dueSoonDays = 7 // ventana de pedidos recurrentes próximos

// DashboardUseCase genera el resumen del tablero.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
// Las seis consultas corren en paralelo; la primera que falle aborta el resumen.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	type amountResult struct {
		value decimal.Decimal
		err   error
	}
	type countResult struct {
		count int
		value decimal.Decimal
		err   error
	}
	type statusResult struct {
		byStatus map[string]int
		err      error
	}

	statusCh := make(chan statusResult, 1)
	revenueCh := make(chan amountResult, 1)
	quotesCh := make(chan countResult, 1)
	exposureCh := make(chan amountResult, 1)
	overdueCh := make(chan amountResult, 1)
	dueCh := make(chan countResult, 1)

	go func() {
		m, err := uc.analyticsRepo.OrdersByStatus(ctx, companyID)
		statusCh <- statusResult{m, err}
	}()
	go func() {
		v, err := uc.analyticsRepo.RevenueBetween(ctx, companyID, monthStart, monthEnd)
		revenueCh <- amountResult{v, err}
	}()
	go func() {
		n, v, err := uc.analyticsRepo.OpenQuotes(ctx, companyID)
		quotesCh <- countResult{n, v, err}
	}()
	go func() {
		v, err := uc.analyticsRepo.CreditExposure(ctx, companyID)
		exposureCh <- amountResult{v, err}
	}()
	go func() {
		v, err := uc.analyticsRepo.OverdueAmount(ctx, companyID, today)
		overdueCh <- amountResult{v, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.StandingOrdersDue(ctx, companyID, today, today.AddDate(0, 0, dueSoonDays))
		dueCh <- countResult{count: n, err: err}
	}()

	status := <-statusCh
	revenue := <-revenueCh
	quotes := <-quotesCh
	exposure := <-exposureCh
	overdue := <-overdueCh
	due := <-dueCh

	switch {
	case status.err != nil:
		return nil, fmt.Errorf("dashboard: pedidos por estado: %w", status.err)
	case revenue.err != nil:
		return nil, fmt.Errorf("dashboard: ingresos del mes: %w", revenue.err)
	case quotes.err != nil:
		return nil, fmt.Errorf("dashboard: cotizaciones abiertas: %w", quotes.err)
	case exposure.err != nil:
		return nil, fmt.Errorf("dashboard: exposición de crédito: %w", exposure.err)
	case overdue.err != nil:
		return nil, fmt.Errorf("dashboard: cartera vencida: %w", overdue.err)
	case due.err != nil:
		return nil, fmt.Errorf("dashboard: pedidos recurrentes: %w", due.err)
	}

	byStatus := status.byStatus
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	return &dto.DashboardSummaryDTO{
		OrdersByStatus:        byStatus,
		MonthlyRevenue:        revenue.value.Round(2),
		OpenQuotes:            quotes.count,
		OpenQuotesValue:       quotes.value.Round(2),
		CreditExposure:        exposure.value.Round(2),
		OverdueAmount:         overdue.value.Round(2),
		StandingOrdersDueSoon: due.count,
		DateLabel:             monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

package scheduler

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// Nombres de las tareas.
const (
	JobStandingOrders = "standing_orders"
	JobExpireQuotes   = "expire_quotes"
	JobCreditOverdue  = "credit_overdue"
)

// StandingRunner corrida de pedidos recurrentes (standing.UseCase).
type StandingRunner interface {
	RunDue(ctx context.Context) (*dto.RunDueResponse, error)
}

// QuoteExpirer vencimiento de cotizaciones (sales.QuoteUseCase).
type QuoteExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// OverdueScanner escaneo de cartera vencida (credit.UseCase).
type OverdueScanner interface {
	ScanOverdue(ctx context.Context) (int, error)
}

// GenerationRecorder cuenta ocurrencias por resultado (metrics.Metrics).
type GenerationRecorder interface {
	GenerationRecorded(status string)
}

// StandingJob tarea de generación. recorder puede ser nil.
func StandingJob(uc StandingRunner, recorder GenerationRecorder) Job {
	return Job{Name: JobStandingOrders, Run: func(ctx context.Context) error {
		res, err := uc.RunDue(ctx)
		if res != nil && recorder != nil {
			record(recorder, entity.GenerationGenerated, res.Generated)
			record(recorder, entity.GenerationPendingApproval, res.Pending)
			record(recorder, entity.GenerationCreditHold, res.OnHold)
			record(recorder, entity.GenerationFailed, res.Failed)
			record(recorder, "skipped", res.Skipped)
		}
		return err
	}}
}

func record(r GenerationRecorder, status string, n int) {
	for i := 0; i < n; i++ {
		r.GenerationRecorded(status)
	}
}

// ExpireQuotesJob tarea de vencimiento de cotizaciones.
func ExpireQuotesJob(uc QuoteExpirer) Job {
	return Job{Name: JobExpireQuotes, Run: func(ctx context.Context) error {
		_, err := uc.ExpireDue(ctx)
		return err
	}}
}

// CreditOverdueJob tarea de suspensión por cartera vencida.
func CreditOverdueJob(uc OverdueScanner) Job {
	return Job{Name: JobCreditOverdue, Run: func(ctx context.Context) error {
		_, err := uc.ScanOverdue(ctx)
		return err
	}}
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// StandingOrderRepository define el puerto de persistencia para pedidos recurrentes y su historial de generación.
type StandingOrderRepository interface {
	Create(ctx context.Context, so *entity.StandingOrder) error
	GetByID(ctx context.Context, id string) (*entity.StandingOrder, error)
	// Update persiste la cabecera y reemplaza las líneas.
	Update(ctx context.Context, so *entity.StandingOrder) error
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StandingOrder, error)
	// ListDue plantillas activas con next_run_date <= today (todas las empresas).
	ListDue(ctx context.Context, today time.Time) ([]*entity.StandingOrder, error)

	// CreateGeneration devuelve domain.ErrAlreadyGenerated si ya existe una fila para (standing_order_id, scheduled_for).
	CreateGeneration(ctx context.Context, g *entity.StandingOrderGeneration) error
	UpdateGeneration(ctx context.Context, g *entity.StandingOrderGeneration) error
	GetGeneration(ctx context.Context, id string) (*entity.StandingOrderGeneration, error)
	ListGenerations(ctx context.Context, standingOrderID string, limit, offset int) ([]*entity.StandingOrderGeneration, error)
}

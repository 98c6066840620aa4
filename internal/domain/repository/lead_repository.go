package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// LeadRepository define el puerto de persistencia para Lead (CRM).
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
	// List filtra por estado cuando status no está vacío; ordena por puntaje descendente.
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Lead, error)
}

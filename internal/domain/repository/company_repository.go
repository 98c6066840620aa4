package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company y sus módulos (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByNIT(ctx context.Context, nit string) (*entity.Company, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// EnableModule activa (o reactiva) un módulo para la empresa.
	EnableModule(ctx context.Context, module *entity.CompanyModule) error
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

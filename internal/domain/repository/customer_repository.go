package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Customer, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/pkg/nit"
)

var allModules = []string{
	entity.ModuleOrders,
	entity.ModuleCRM,
	entity.ModuleCredit,
	entity.ModuleStandingOrders,
}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa y activa los módulos pedidos (todos si no se indican).
// Devuelve domain.ErrDuplicate si el NIT ya existe y domain.ErrInvalidInput si su dígito de
// verificación no corresponde.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := nit.Validate(in.NIT); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, _ := uc.repo.GetByNIT(ctx, in.NIT)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		NIT:       in.NIT,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	modules := in.Modules
	if len(modules) == 0 {
		modules = allModules
	}
	for _, name := range modules {
		if err := uc.repo.EnableModule(ctx, &entity.CompanyModule{
			ID:          uuid.New().String(),
			CompanyID:   company.ID,
			ModuleName:  name,
			IsActive:    true,
			ActivatedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return nil, err
		}
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		NIT:       c.NIT,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

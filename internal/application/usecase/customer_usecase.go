package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// CustomerUseCase casos de uso de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un cliente. El NIT/cédula es único por empresa.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	c := &entity.Customer{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Name:            in.Name,
		TaxID:           in.TaxID,
		Email:           in.Email,
		Phone:           in.Phone,
		BillingAddress:  in.BillingAddress,
		ShippingAddress: in.ShippingAddress,
		Status:          entity.CustomerActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// Get obtiene un cliente de la empresa.
func (uc *CustomerUseCase) Get(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// List lista clientes de la empresa.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCustomerResponse(c))
	}
	return out, nil
}

// Update actualiza los datos de contacto, direcciones o estado del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.BillingAddress != nil {
		c.BillingAddress = *in.BillingAddress
	}
	if in.ShippingAddress != nil {
		c.ShippingAddress = *in.ShippingAddress
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

func (uc *CustomerUseCase) get(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// ToCustomerResponse mapea la entidad a DTO.
func ToCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:              c.ID,
		CompanyID:       c.CompanyID,
		Name:            c.Name,
		TaxID:           c.TaxID,
		Email:           c.Email,
		Phone:           c.Phone,
		BillingAddress:  c.BillingAddress,
		ShippingAddress: c.ShippingAddress,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

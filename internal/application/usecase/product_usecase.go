package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

func validTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(100))
}

// Create crea un nuevo producto. El SKU es único por empresa.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() || !validTaxRate(in.TaxRate) {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Unit == "" {
		in.Unit = "und"
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		TaxRate:     in.TaxRate,
		Unit:        in.Unit,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto (campos opcionales).
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.TaxRate != nil {
		if !validTaxRate(*in.TaxRate) {
			return nil, domain.ErrInvalidInput
		}
		product.TaxRate = *in.TaxRate
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *ProductUseCase) get(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Unit:        p.Unit,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, description, price, tax_rate, unit, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(s scanner) (*entity.Product, error) {
	var p entity.Product
	err := s.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.TaxRate,
		&p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. SKU repetido en la empresa = domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.Description,
		product.Price, product.TaxRate, product.Unit, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCompanyAndSKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE company_id = $1 AND sku = $2`, companyID, sku))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update actualiza los datos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, price = $5, tax_rate = $6,
		       unit = $7, active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.Price, product.TaxRate,
		product.Unit, product.Active, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista productos de la empresa ordenados por nombre.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, companyID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

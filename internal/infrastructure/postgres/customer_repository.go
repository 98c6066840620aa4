package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, company_id, name, tax_id, email, phone, billing_address, shipping_address, status, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(s scanner) (*entity.Customer, error) {
	var c entity.Customer
	err := s.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Email, &c.Phone,
		&c.BillingAddress, &c.ShippingAddress, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.CompanyID, customer.Name, customer.TaxID, customer.Email, customer.Phone,
		customer.BillingAddress, customer.ShippingAddress, customer.Status,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByCompanyAndTaxID obtiene un cliente por empresa y NIT/cédula.
func (r *CustomerRepo) GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND tax_id = $2`, companyID, taxID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by tax_id: %w", err)
	}
	return c, nil
}

// ListByCompany lista clientes de la empresa con paginación.
func (r *CustomerRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, companyID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, tax_id = $3, email = $4, phone = $5,
		       billing_address = $6, shipping_address = $7, status = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, customer.TaxID, customer.Email, customer.Phone,
		customer.BillingAddress, customer.ShippingAddress, customer.Status, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

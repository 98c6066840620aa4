package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

const companyColumns = `id, name, nit, address, phone, email, status, created_at, updated_at`

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

func scanCompany(s scanner) (*entity.Company, error) {
	var c entity.Company
	if err := s.Scan(&c.ID, &c.Name, &c.NIT, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.NIT, company.Address,
		company.Phone, company.Email, company.Status,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByNIT obtiene una empresa por NIT.
func (r *CompanyRepo) GetByNIT(ctx context.Context, nit string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE nit = $1`, nit))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by NIT: %w", err)
	}
	return c, nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// EnableModule activa el módulo; si ya existía lo reactiva con la nueva fecha de vencimiento.
func (r *CompanyRepo) EnableModule(ctx context.Context, m *entity.CompanyModule) error {
	const query = `
		INSERT INTO company_modules (id, company_id, module_name, is_active, activated_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, true, $4, $5, $6, $6)
		ON CONFLICT (company_id, module_name)
		DO UPDATE SET is_active = true, activated_at = EXCLUDED.activated_at,
		              expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, m.ID, m.CompanyID, m.ModuleName, m.ActivatedAt, m.ExpiresAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("enable module %s: %w", m.ModuleName, err)
	}
	m.IsActive = true
	return nil
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
func (r *CompanyRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, companyID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}

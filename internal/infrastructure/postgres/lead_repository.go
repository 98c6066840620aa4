package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

const leadColumns = `id, company_id, contact_name, company_name, email, phone, source, status, estimated_value,
	employee_count, industry, notes, score, converted_customer_id, created_at, updated_at`

// LeadRepo persistencia de leads del CRM.
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador.
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

func scanLead(s scanner) (*entity.Lead, error) {
	var l entity.Lead
	err := s.Scan(&l.ID, &l.CompanyID, &l.ContactName, &l.CompanyName, &l.Email, &l.Phone, &l.Source, &l.Status,
		&l.EstimatedValue, &l.EmployeeCount, &l.Industry, &l.Notes, &l.Score, &l.ConvertedCustomerID,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepo) Create(ctx context.Context, l *entity.Lead) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.CompanyID, l.ContactName, l.CompanyName, l.Email, l.Phone, l.Source, l.Status,
		l.EstimatedValue, l.EmployeeCount, l.Industry, l.Notes, l.Score, l.ConvertedCustomerID,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepo) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	l, err := scanLead(r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepo) Update(ctx context.Context, l *entity.Lead) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE leads SET contact_name = $2, company_name = $3, email = $4, phone = $5, source = $6, status = $7,
		       estimated_value = $8, employee_count = $9, industry = $10, notes = $11, score = $12,
		       converted_customer_id = $13, updated_at = $14
		WHERE id = $1`,
		l.ID, l.ContactName, l.CompanyName, l.Email, l.Phone, l.Source, l.Status,
		l.EstimatedValue, l.EmployeeCount, l.Industry, l.Notes, l.Score, l.ConvertedCustomerID, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ordena por puntaje descendente (los más calientes primero).
func (r *LeadRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Lead, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE company_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY score DESC, created_at DESC
		LIMIT $3 OFFSET $4`, companyID, status, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

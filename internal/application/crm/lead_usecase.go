// Package crm casos de uso de prospectos (leads): alta, formulario público, estados y conversión a cliente.
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/lead"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// CaptchaVerifier valida el token reCAPTCHA del formulario público.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// LeadUseCase casos de uso de leads.
type LeadUseCase struct {
	store   repository.Store
	tx      repository.TxRunner
	captcha CaptchaVerifier // nil = sin verificación
}

// NewLeadUseCase construye el caso de uso. captcha puede ser nil.
func NewLeadUseCase(store repository.Store, tx repository.TxRunner, captcha CaptchaVerifier) *LeadUseCase {
	return &LeadUseCase{store: store, tx: tx, captcha: captcha}
}

// Create registra un lead capturado por el equipo comercial.
func (uc *LeadUseCase) Create(ctx context.Context, companyID string, in dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	source := in.Source
	if source == "" {
		source = entity.SourceOther
	}
	if !lead.IsValidSource(source) || in.EstimatedValue.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	l := &entity.Lead{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		ContactName:    strings.TrimSpace(in.ContactName),
		CompanyName:    in.CompanyName,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Source:         source,
		Status:         entity.LeadNew,
		EstimatedValue: in.EstimatedValue,
		EmployeeCount:  in.EmployeeCount,
		Industry:       in.Industry,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if l.ContactName == "" {
		return nil, domain.ErrInvalidInput
	}
	l.Score = lead.Score(l)
	if err := uc.store.Leads.Create(ctx, l); err != nil {
		return nil, err
	}
	return toLeadResponse(l), nil
}

// CapturePublic registra un lead desde el formulario web (origen web_form).
// Con captcha configurado el token es obligatorio.
func (uc *LeadUseCase) CapturePublic(ctx context.Context, in dto.PublicLeadRequest, remoteIP string) (*dto.LeadResponse, error) {
	if uc.captcha != nil {
		ok, err := uc.captcha.Verify(ctx, in.CaptchaToken, remoteIP)
		if err != nil {
			return nil, fmt.Errorf("verificar captcha: %w", err)
		}
		if !ok {
			return nil, domain.ErrCaptchaFailed
		}
	}
	company, err := uc.store.Companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return uc.Create(ctx, in.CompanyID, dto.CreateLeadRequest{
		ContactName:   in.ContactName,
		CompanyName:   in.CompanyName,
		Email:         in.Email,
		Phone:         in.Phone,
		Source:        entity.SourceWebForm,
		EmployeeCount: in.EmployeeCount,
		Notes:         in.Message,
	})
}

// List lista leads de la empresa (filtro opcional por estado).
func (uc *LeadUseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*dto.LeadResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := uc.store.Leads.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LeadResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLeadResponse(l))
	}
	return out, nil
}

// Get obtiene un lead de la empresa.
func (uc *LeadUseCase) Get(ctx context.Context, companyID, id string) (*dto.LeadResponse, error) {
	l, err := uc.get(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	return toLeadResponse(l), nil
}

// UpdateStatus cambia el estado validando la tabla de transiciones y recalcula el puntaje.
// La conversión tiene su propio caso de uso (Convert).
func (uc *LeadUseCase) UpdateStatus(ctx context.Context, companyID, id, status string) (*dto.LeadResponse, error) {
	if status == entity.LeadConverted {
		return nil, fmt.Errorf("%w: use la conversión a cliente", domain.ErrInvalidInput)
	}
	l, err := uc.get(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := lead.ValidateTransition(l.Status, status); err != nil {
		return nil, err
	}
	l.Status = status
	l.Score = lead.Score(l)
	l.UpdatedAt = time.Now()
	if err := uc.store.Leads.Update(ctx, l); err != nil {
		return nil, err
	}
	return toLeadResponse(l), nil
}

// Convert pasa un lead calificado a converted y crea el cliente en la misma transacción.
func (uc *LeadUseCase) Convert(ctx context.Context, companyID, id string, in dto.ConvertLeadRequest) (*dto.LeadResponse, error) {
	var out *entity.Lead
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		l, err := uc.get(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if err := lead.ValidateTransition(l.Status, entity.LeadConverted); err != nil {
			return err
		}
		existing, err := tx.Customers.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		name := firstNonEmpty(in.Name, l.CompanyName, l.ContactName)
		now := time.Now()
		customer := &entity.Customer{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			Name:            name,
			TaxID:           in.TaxID,
			Email:           l.Email,
			Phone:           l.Phone,
			BillingAddress:  in.BillingAddress,
			ShippingAddress: firstNonEmpty(in.ShippingAddress, in.BillingAddress),
			Status:          entity.CustomerActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Customers.Create(ctx, customer); err != nil {
			return err
		}
		l.Status = entity.LeadConverted
		l.ConvertedCustomerID = &customer.ID
		l.Score = lead.Score(l)
		l.UpdatedAt = now
		if err := tx.Leads.Update(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLeadResponse(out), nil
}

func (uc *LeadUseCase) get(ctx context.Context, s repository.Store, companyID, id string) (*entity.Lead, error) {
	l, err := s.Leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func toLeadResponse(l *entity.Lead) *dto.LeadResponse {
	return &dto.LeadResponse{
		ID:                  l.ID,
		ContactName:         l.ContactName,
		CompanyName:         l.CompanyName,
		Email:               l.Email,
		Phone:               l.Phone,
		Source:              l.Source,
		Status:              l.Status,
		EstimatedValue:      l.EstimatedValue,
		EmployeeCount:       l.EmployeeCount,
		Industry:            l.Industry,
		Notes:               l.Notes,
		Score:               l.Score,
		ConvertedCustomerID: l.ConvertedCustomerID,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

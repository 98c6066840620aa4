// Package billing facturación de pedidos: factura y lista de empaque en PDF, almacenamiento de
// documentos y pagos recibidos desde la pasarela.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/order"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

const contentTypePDF = "application/pdf"

// DocumentUseCase emite facturas y genera los PDF de cada pedido.
type DocumentUseCase struct {
	store    repository.Store
	renderer DocumentRenderer
	files    DocumentStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewDocumentUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentUseCase(store repository.Store, renderer DocumentRenderer, files DocumentStore, log zerolog.Logger) *DocumentUseCase {
	return &DocumentUseCase{
		store:    store,
		renderer: renderer,
		files:    files,
		log:      log.With().Str("component", "documents").Logger(),
		now:      time.Now,
	}
}

// IssueInvoice emite la factura del pedido y guarda su PDF. Es idempotente: si el pedido ya tiene
// factura la devuelve (regenerando el PDF solo si falta).
func (uc *DocumentUseCase) IssueInvoice(ctx context.Context, orderID string) (*entity.Invoice, error) {
	o, company, customer, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	inv, err := uc.store.Invoices.GetByOrderID(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("factura: buscar por pedido: %w", err)
	}
	if inv == nil {
		if inv, err = uc.createInvoice(ctx, o); err != nil {
			return nil, err
		}
	} else {
		doc, err := uc.store.Documents.GetByOrderAndKind(ctx, o.ID, entity.DocumentInvoice)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return inv, nil
		}
	}

	pdf, err := uc.renderer.RenderInvoice(ctx, inv, o, company, customer)
	if err != nil {
		return nil, fmt.Errorf("factura: generar pdf: %w", err)
	}
	if err := uc.save(ctx, o, entity.DocumentInvoice, fmt.Sprintf("factura_%s.pdf", inv.Number), pdf); err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", o.ID).Str("invoice", inv.Number).Msg("factura emitida")
	return inv, nil
}

// createInvoice vence al plazo del crédito del cliente o el mismo día si es prepago.
func (uc *DocumentUseCase) createInvoice(ctx context.Context, o *entity.Order) (*entity.Invoice, error) {
	now := uc.now()
	y, m, d := now.Date()
	issue := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	due := issue
	if o.PaymentMethod == entity.PaymentMethodCredit {
		terms, err := uc.store.Credit.GetTermsByCustomer(ctx, o.CustomerID)
		if err != nil {
			return nil, err
		}
		if terms != nil {
			due = issue.AddDate(0, 0, terms.PaymentTermsDays)
		}
	}
	status := entity.InvoiceIssued
	if o.PaymentStatus == entity.PaymentPaid {
		status = entity.InvoicePaid
	}
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		CompanyID:  o.CompanyID,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Number:     order.NewNumber(order.PrefixInvoice, now),
		Status:     status,
		IssueDate:  issue,
		DueDate:    due,
		Subtotal:   o.Subtotal,
		Tax:        o.Tax,
		Total:      o.Total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.store.Invoices.Create(ctx, inv)
	if errors.Is(err, domain.ErrDuplicate) {
		// Otro proceso la emitió primero.
		return uc.store.Invoices.GetByOrderID(ctx, o.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("factura: crear: %w", err)
	}
	return inv, nil
}

// PackingList genera (o regenera) la lista de empaque del pedido.
func (uc *DocumentUseCase) PackingList(ctx context.Context, orderID string) (*entity.Document, error) {
	o, company, customer, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.renderer.RenderPackingList(ctx, o, company, customer)
	if err != nil {
		return nil, fmt.Errorf("lista de empaque: generar pdf: %w", err)
	}
	if err := uc.save(ctx, o, entity.DocumentPackingList, fmt.Sprintf("empaque_%s.pdf", o.Number), pdf); err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", o.ID).Msg("lista de empaque generada")
	return uc.store.Documents.GetByOrderAndKind(ctx, o.ID, entity.DocumentPackingList)
}

// GetDocument devuelve metadatos y contenido del documento del pedido.
//
// Retorna:
//   - domain.ErrNotFound   si el pedido o el documento no existen.
//   - domain.ErrForbidden  si el pedido no pertenece a la empresa del token.
//   - domain.ErrInvalidInput si kind no es invoice ni packing_list.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, companyID, orderID, kind string) (*entity.Document, []byte, error) {
	if kind != entity.DocumentInvoice && kind != entity.DocumentPackingList {
		return nil, nil, domain.ErrInvalidInput
	}
	o, err := uc.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, domain.ErrNotFound
	}
	if o.CompanyID != companyID {
		return nil, nil, domain.ErrForbidden
	}
	doc, err := uc.store.Documents.GetByOrderAndKind(ctx, orderID, kind)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, domain.ErrNotFound
	}
	data, err := uc.files.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("documento: leer %s: %w", doc.StorageKey, err)
	}
	return doc, data, nil
}

func (uc *DocumentUseCase) save(ctx context.Context, o *entity.Order, kind, filename string, data []byte) error {
	key := fmt.Sprintf("%s/%s/%s", o.CompanyID, o.ID, filename)
	if err := uc.files.Put(ctx, key, contentTypePDF, data); err != nil {
		return fmt.Errorf("documento: guardar %s: %w", key, err)
	}
	return uc.store.Documents.Upsert(ctx, &entity.Document{
		ID:          uuid.New().String(),
		CompanyID:   o.CompanyID,
		OrderID:     o.ID,
		Kind:        kind,
		StorageKey:  key,
		ContentType: contentTypePDF,
		Size:        int64(len(data)),
		CreatedAt:   uc.now(),
	})
}

func (uc *DocumentUseCase) load(ctx context.Context, orderID string) (*entity.Order, *entity.Company, *entity.Customer, error) {
	o, err := uc.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("documento: obtener pedido: %w", err)
	}
	if o == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	company, err := uc.store.Companies.GetByID(ctx, o.CompanyID)
	if err != nil || company == nil {
		return nil, nil, nil, fmt.Errorf("documento: obtener empresa: %w", errors.Join(err, domain.ErrNotFound))
	}
	customer, err := uc.store.Customers.GetByID(ctx, o.CustomerID)
	if err != nil || customer == nil {
		return nil, nil, nil, fmt.Errorf("documento: obtener cliente: %w", errors.Join(err, domain.ErrNotFound))
	}
	return o, company, customer, nil
}

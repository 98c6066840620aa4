// Package sales casos de uso de cotizaciones y pedidos.
package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/order"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// LineInput línea a valorizar. UnitPrice nil o cero = precio del catálogo.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// PriceLines valoriza las líneas contra el catálogo de la empresa.
// Cantidad > 0; el producto debe existir, ser de la empresa y estar activo.
func PriceLines(ctx context.Context, products repository.ProductRepository, companyID string, lines []LineInput) ([]entity.LineItem, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]entity.LineItem, 0, len(lines))
	for _, l := range lines {
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
		}
		p, err := products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: producto %s inactivo", domain.ErrInvalidInput, p.SKU)
		}
		price := p.Price
		if l.UnitPrice != nil && !l.UnitPrice.IsZero() {
			if l.UnitPrice.IsNegative() {
				return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
			}
			price = *l.UnitPrice
		}
		items = append(items, order.PriceLine(p.ID, p.Name, p.SKU, l.Quantity, price, p.TaxRate))
	}
	return items, nil
}

func linesFromRequest(in []dto.LineItemRequest) []LineInput {
	out := make([]LineInput, 0, len(in))
	for _, it := range in {
		price := it.UnitPrice
		out = append(out, LineInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: &price})
	}
	return out
}

func toLineResponses(items []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			TaxRate:   it.TaxRate,
			Subtotal:  it.Subtotal,
			Tax:       it.Tax,
		})
	}
	return out
}

// ToQuoteResponse mapea la entidad a DTO.
func ToQuoteResponse(q *entity.Quote) *dto.QuoteResponse {
	return &dto.QuoteResponse{
		ID:              q.ID,
		CustomerID:      q.CustomerID,
		Number:          q.Number,
		Status:          q.Status,
		ValidUntil:      q.ValidUntil,
		Subtotal:        q.Subtotal,
		Tax:             q.Tax,
		Total:           q.Total,
		Notes:           q.Notes,
		StandingOrderID: q.StandingOrderID,
		OrderID:         q.OrderID,
		Items:           toLineResponses(q.Items),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

// ToOrderResponse mapea la entidad a DTO, con los estados alcanzables desde el actual.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		QuoteID:         o.QuoteID,
		Number:          o.Number,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Total:           o.Total,
		AmountPaid:      o.AmountPaid,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		AllowedStatuses: order.AllowedTargets(o.Status),
		Items:           toLineResponses(o.Items),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

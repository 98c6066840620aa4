package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:            "o1",
		Number:        "PED-20260110-ABC123",
		PaymentMethod: entity.PaymentMethodCredit,
		Subtotal:      decimal.NewFromInt(200000),
		Tax:           decimal.NewFromInt(38000),
		Total:         decimal.NewFromInt(238000),
		Notes:         "Entregar en bodega 2",
		CreatedAt:     time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		Items: []entity.LineItem{{
			ProductID: "p1", Name: "Arroz 25kg", SKU: "ARZ-25",
			Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(50000),
			TaxRate: decimal.NewFromInt(19), Subtotal: decimal.NewFromInt(200000), Tax: decimal.NewFromInt(38000),
		}},
	}
}

func TestRenderer_Invoice(t *testing.T) {
	o := sampleOrder()
	inv := &entity.Invoice{
		Number: "FAC-20260110-XYZ789", IssueDate: o.CreatedAt, DueDate: o.CreatedAt.AddDate(0, 0, 30),
		Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total,
	}
	company := &entity.Company{Name: "Distribuidora Andina", NIT: "900123456"}
	customer := &entity.Customer{Name: "Tienda La 14", TaxID: "800987654"}

	data, err := NewRenderer().RenderInvoice(context.Background(), inv, o, company, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderer_PackingList(t *testing.T) {
	company := &entity.Company{Name: "Distribuidora Andina", NIT: "900123456"}
	customer := &entity.Customer{Name: "Tienda La 14", TaxID: "800987654", ShippingAddress: "Cra 1 # 2-3"}

	data, err := NewRenderer().RenderPackingList(context.Background(), sampleOrder(), company, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

package order

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

func TestCanTransition_Tabla(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.OrderDraft, entity.OrderPending, true},
		{entity.OrderDraft, entity.OrderCancelled, true},
		{entity.OrderDraft, entity.OrderConfirmed, false},
		{entity.OrderPending, entity.OrderConfirmed, true},
		{entity.OrderPending, entity.OrderShipped, false},
		{entity.OrderConfirmed, entity.OrderProcessing, true},
		{entity.OrderConfirmed, entity.OrderCancelled, true},
		{entity.OrderProcessing, entity.OrderShipped, true},
		{entity.OrderProcessing, entity.OrderCancelled, true},
		{entity.OrderShipped, entity.OrderDelivered, true},
		{entity.OrderShipped, entity.OrderCancelled, false},
		{entity.OrderDelivered, entity.OrderCancelled, false},
		{entity.OrderCancelled, entity.OrderPending, false},
		{entity.OrderPending, entity.OrderPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(entity.OrderDelivered))
	assert.True(t, IsTerminal(entity.OrderCancelled))
	assert.False(t, IsTerminal(entity.OrderShipped))
	assert.False(t, IsTerminal("desconocido"))
}

func TestValidateTransition_Errores(t *testing.T) {
	err := ValidateTransition(entity.OrderShipped, entity.OrderPending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	err = ValidateTransition(entity.OrderPending, "enviado")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	assert.NoError(t, ValidateTransition(entity.OrderPending, entity.OrderConfirmed))
}

func TestAllowedTargets_DevuelveCopia(t *testing.T) {
	got := AllowedTargets(entity.OrderDraft)
	got[0] = "x"
	assert.Equal(t, []string{entity.OrderPending, entity.OrderCancelled}, AllowedTargets(entity.OrderDraft))
	assert.Empty(t, AllowedTargets(entity.OrderDelivered))
}

func TestPriceLineYTotals(t *testing.T) {
	l1 := PriceLine("p1", "Arroz", "ARR-1", decimal.NewFromInt(3), decimal.RequireFromString("1000.50"), decimal.NewFromInt(19))
	l2 := PriceLine("p2", "Sal", "SAL-1", decimal.NewFromInt(2), decimal.NewFromInt(500), decimal.Zero)

	assert.True(t, l1.Subtotal.Equal(decimal.RequireFromString("3001.50")))
	assert.True(t, l1.Tax.Equal(decimal.RequireFromString("570.29")))

	sub, tax, total := Totals([]entity.LineItem{l1, l2})
	assert.True(t, sub.Equal(decimal.RequireFromString("4001.50")))
	assert.True(t, tax.Equal(decimal.RequireFromString("570.29")))
	assert.True(t, total.Equal(decimal.RequireFromString("4571.79")))
}

func TestNewNumber_Formato(t *testing.T) {
	n := NewNumber(PrefixOrder, time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^PED-20250309-[0-9A-F]{6}$`), n)
}

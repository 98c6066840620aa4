package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// Prefijos de numeración.
const (
	PrefixQuote   = "COT"
	PrefixOrder   = "PED"
	PrefixInvoice = "FAC"
)

var hundred = decimal.NewFromInt(100)

// PriceLine calcula subtotal e impuesto de una línea. taxRate es un porcentaje (19 = 19%).
func PriceLine(productID, name, sku string, quantity, unitPrice, taxRate decimal.Decimal) entity.LineItem {
	subtotal := quantity.Mul(unitPrice).Round(2)
	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)
	return entity.LineItem{
		ID:        uuid.New().String(),
		ProductID: productID,
		Name:      name,
		SKU:       sku,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		TaxRate:   taxRate,
		Subtotal:  subtotal,
		Tax:       tax,
	}
}

// Totals suma subtotal, impuesto y total de las líneas.
func Totals(items []entity.LineItem) (subtotal, tax, total decimal.Decimal) {
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
		tax = tax.Add(it.Tax)
	}
	return subtotal, tax, subtotal.Add(tax)
}

// NewNumber genera un número legible PREFIJO-YYYYMMDD-xxxxxx.
func NewNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}

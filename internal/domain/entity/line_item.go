package entity

import "github.com/shopspring/decimal"

// LineItem línea de cotización o pedido. Name y SKU se copian del producto al momento de cotizar.
type LineItem struct {
	ID        string
	ProductID string
	Name      string
	SKU       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // porcentaje
	Subtotal  decimal.Decimal // Quantity * UnitPrice
	Tax       decimal.Decimal
}

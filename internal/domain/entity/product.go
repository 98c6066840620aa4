package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo mayorista.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta por unidad
	TaxRate     decimal.Decimal // porcentaje 0..100 (19 = IVA 19%)
	Unit        string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

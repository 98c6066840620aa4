package entity

import "time"

// Estados de Customer.
const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

// Customer representa un cliente mayorista de la empresa.
type Customer struct {
	ID              string
	CompanyID       string
	Name            string
	TaxID           string // NIT o Cédula
	Email           string
	Phone           string
	BillingAddress  string
	ShippingAddress string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

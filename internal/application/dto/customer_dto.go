package dto

import "time"

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	TaxID           string `json:"tax_id" validate:"required,max=30"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=30"`
	BillingAddress  string `json:"billing_address,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

// UpdateCustomerRequest body para PUT /api/customers/:id (parcial).
type UpdateCustomerRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	BillingAddress  *string `json:"billing_address"`
	ShippingAddress *string `json:"shipping_address"`
	Status          *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	Name            string    `json:"name"`
	TaxID           string    `json:"tax_id"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	BillingAddress  string    `json:"billing_address,omitempty"`
	ShippingAddress string    `json:"shipping_address,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLeadRequest alta de lead por un usuario autenticado.
type CreateLeadRequest struct {
	ContactName    string          `json:"contact_name" validate:"required,max=200"`
	CompanyName    string          `json:"company_name" validate:"omitempty,max=200"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Phone          string          `json:"phone" validate:"omitempty,max=30"`
	Source         string          `json:"source" validate:"omitempty,oneof=web_form referral trade_show cold_call other"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	EmployeeCount  int             `json:"employee_count" validate:"min=0"`
	Industry       string          `json:"industry" validate:"omitempty,max=100"`
	Notes          string          `json:"notes"`
}

// PublicLeadRequest formulario web público (sin token). CompanyID identifica al mayorista.
type PublicLeadRequest struct {
	CompanyID      string `json:"company_id" validate:"required,uuid"`
	ContactName    string `json:"contact_name" validate:"required,max=200"`
	CompanyName    string `json:"company_name" validate:"omitempty,max=200"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,max=30"`
	EmployeeCount  int    `json:"employee_count" validate:"min=0"`
	Message        string `json:"message" validate:"max=2000"`
	CaptchaToken   string `json:"captcha_token"`
}

// UpdateLeadStatusRequest cambio de estado de un lead.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified lost"`
}

// LeadResponse lead en respuestas.
type LeadResponse struct {
	ID                  string          `json:"id"`
	ContactName         string          `json:"contact_name"`
	CompanyName         string          `json:"company_name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Source              string          `json:"source"`
	Status              string          `json:"status"`
	EstimatedValue      decimal.Decimal `json:"estimated_value"`
	EmployeeCount       int             `json:"employee_count"`
	Industry            string          `json:"industry,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	Score               int             `json:"score"`
	ConvertedCustomerID *string         `json:"converted_customer_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ConvertLeadRequest datos del cliente creado al convertir un lead calificado.
type ConvertLeadRequest struct {
	TaxID           string `json:"tax_id" validate:"required,max=30"`
	Name            string `json:"name" validate:"omitempty,max=200"` // vacío = company_name o contact_name
	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
}

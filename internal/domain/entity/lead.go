package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Lead.
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadConverted = "converted"
	LeadLost      = "lost"
)

// Orígenes de Lead.
const (
	SourceWebForm   = "web_form"
	SourceReferral  = "referral"
	SourceTradeShow = "trade_show"
	SourceColdCall  = "cold_call"
	SourceOther     = "other"
)

// Lead prospecto comercial (CRM).
type Lead struct {
	ID                  string
	CompanyID           string
	ContactName         string
	CompanyName         string
	Email               string
	Phone               string
	Source              string
	Status              string
	EstimatedValue      decimal.Decimal
	EmployeeCount       int
	Industry            string
	Notes               string
	Score               int
	ConvertedCustomerID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

package lead

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

func TestScore_Componentes(t *testing.T) {
	l := &entity.Lead{Source: entity.SourceColdCall, Status: entity.LeadNew}
	assert.Equal(t, 10, Score(l))

	l.Email = "compras@tienda.co"
	l.EmployeeCount = 55
	l.EstimatedValue = decimal.NewFromInt(12000)
	assert.Equal(t, 10+10+15+15, Score(l))

	l.Status = entity.LeadContacted
	assert.Equal(t, 55, Score(l))
}

func TestScore_SeLimitaA100(t *testing.T) {
	l := &entity.Lead{
		Source:         entity.SourceReferral,
		Status:         entity.LeadQualified,
		Email:          "a@b.co",
		Phone:          "3001234567",
		EmployeeCount:  500,
		EstimatedValue: decimal.NewFromInt(90000),
	}
	// 30+10+10+20+20+15 = 105
	assert.Equal(t, 100, Score(l))
}

func TestScore_OrigenDesconocidoNoSuma(t *testing.T) {
	assert.Equal(t, 0, Score(&entity.Lead{Source: "banner"}))
	assert.False(t, IsValidSource("banner"))
	assert.True(t, IsValidSource(entity.SourceTradeShow))
}

func TestTransiciones(t *testing.T) {
	assert.True(t, CanTransition(entity.LeadNew, entity.LeadQualified))
	assert.True(t, CanTransition(entity.LeadLost, entity.LeadNew))
	assert.True(t, CanTransition(entity.LeadQualified, entity.LeadConverted))
	assert.False(t, CanTransition(entity.LeadNew, entity.LeadConverted))
	assert.False(t, CanTransition(entity.LeadConverted, entity.LeadLost))
	assert.Error(t, ValidateTransition(entity.LeadContacted, entity.LeadNew))
}

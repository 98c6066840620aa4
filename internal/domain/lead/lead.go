// Package lead reglas de CRM: transiciones de estado y puntaje heurístico de prospectos.
package lead

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

var transitions = map[string]map[string]bool{
	entity.LeadNew:       {entity.LeadContacted: true, entity.LeadQualified: true, entity.LeadLost: true},
	entity.LeadContacted: {entity.LeadQualified: true, entity.LeadLost: true},
	entity.LeadQualified: {entity.LeadConverted: true, entity.LeadLost: true},
	entity.LeadLost:      {entity.LeadNew: true},
}

var sourceWeight = map[string]int{
	entity.SourceReferral:  30,
	entity.SourceTradeShow: 25,
	entity.SourceWebForm:   20,
	entity.SourceColdCall:  10,
	entity.SourceOther:     5,
}

// IsValidSource informa si s es un origen conocido.
func IsValidSource(s string) bool {
	_, ok := sourceWeight[s]
	return ok
}

// CanTransition informa si el lead puede pasar de from a to.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// ValidateTransition devuelve domain.ErrInvalidTransition (envuelto) si el cambio no está permitido.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: lead %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// Score calcula el puntaje 0..100 del lead.
// origen + datos de contacto + tamaño de empresa + valor estimado + bono por estado.
func Score(l *entity.Lead) int {
	score := sourceWeight[l.Source]
	if l.Email != "" {
		score += 10
	}
	if l.Phone != "" {
		score += 10
	}

	switch {
	case l.EmployeeCount >= 200:
		score += 20
	case l.EmployeeCount >= 50:
		score += 15
	case l.EmployeeCount >= 10:
		score += 10
	}

	switch {
	case l.EstimatedValue.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		score += 20
	case l.EstimatedValue.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		score += 15
	case l.EstimatedValue.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		score += 5
	}

	switch l.Status {
	case entity.LeadContacted:
		score += 5
	case entity.LeadQualified:
		score += 15
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

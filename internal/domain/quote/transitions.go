// Package quote contiene la tabla de estados de las cotizaciones.
package quote

import (
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// ValidityDays vigencia por defecto de una cotización.
const ValidityDays = 15

var transitions = map[string]map[string]bool{
	entity.QuoteDraft:    {entity.QuoteSent: true, entity.QuoteRejected: true},
	entity.QuoteSent:     {entity.QuoteAccepted: true, entity.QuoteRejected: true, entity.QuoteExpired: true},
	entity.QuoteAccepted: {entity.QuoteConverted: true},
}

// CanTransition informa si la cotización puede pasar de from a to.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// ValidateTransition devuelve domain.ErrInvalidTransition (envuelto) si el cambio no está permitido.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cotización %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// Package order contiene las reglas de dominio de pedidos: tabla de transiciones de estado,
// cálculo de líneas y totales, y numeración de documentos comerciales.
package order

import (
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// transitions es la única tabla de transiciones de pedidos del sistema.
// Los estados sin entrada (delivered, cancelled) son terminales.
var transitions = map[string][]string{
	entity.OrderDraft:      {entity.OrderPending, entity.OrderCancelled},
	entity.OrderPending:    {entity.OrderConfirmed, entity.OrderCancelled},
	entity.OrderConfirmed:  {entity.OrderProcessing, entity.OrderCancelled},
	entity.OrderProcessing: {entity.OrderShipped, entity.OrderCancelled},
	entity.OrderShipped:    {entity.OrderDelivered},
}

var statuses = map[string]bool{
	entity.OrderDraft:      true,
	entity.OrderPending:    true,
	entity.OrderConfirmed:  true,
	entity.OrderProcessing: true,
	entity.OrderShipped:    true,
	entity.OrderDelivered:  true,
	entity.OrderCancelled:  true,
}

// IsValidStatus informa si s es un estado de pedido conocido.
func IsValidStatus(s string) bool {
	return statuses[s]
}

// CanTransition informa si el pedido puede pasar de from a to. Las transiciones a sí mismo no se permiten.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets devuelve los estados alcanzables desde from (vacío si es terminal).
func AllowedTargets(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal informa si el estado no admite más transiciones.
func IsTerminal(status string) bool {
	return statuses[status] && len(transitions[status]) == 0
}

// ValidateTransition devuelve domain.ErrInvalidTransition (envuelto) si el cambio no está en la tabla.
func ValidateTransition(from, to string) error {
	if !IsValidStatus(to) {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// Package feed distribuye los cambios de estado de pedidos publicados por la base (LISTEN/NOTIFY)
// a los manejadores internos y a los clientes conectados por SSE.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OrderEvent payload del canal order_events.
type OrderEvent struct {
	OrderID   string    `json:"order_id"`
	CompanyID string    `json:"company_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// Decode interpreta el payload JSON de una notificación.
func Decode(payload string) (OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return OrderEvent{}, fmt.Errorf("feed: payload inválido: %w", err)
	}
	if ev.OrderID == "" || ev.CompanyID == "" || ev.NewStatus == "" {
		return OrderEvent{}, fmt.Errorf("feed: payload incompleto")
	}
	return ev, nil
}

// Handler procesa un evento de pedido.
type Handler interface {
	Handle(ctx context.Context, ev OrderEvent) error
}

// HandlerFunc adapta una función a Handler.
type HandlerFunc func(ctx context.Context, ev OrderEvent) error

// Handle implementa Handler.
func (f HandlerFunc) Handle(ctx context.Context, ev OrderEvent) error { return f(ctx, ev) }

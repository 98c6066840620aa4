package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type subscription struct {
	name     string
	statuses map[string]bool // vacío = todos los estados
	handler  Handler
}

// Bus despacha eventos de pedidos a los manejadores suscritos, en orden y en el goroutine del llamador.
// El error o pánico de un manejador se registra y no detiene a los demás.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	log  zerolog.Logger
}

// NewBus construye el bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log.With().Str("component", "order_feed").Logger()}
}

// Subscribe registra h para los estados nuevos indicados (ninguno = todos).
func (b *Bus) Subscribe(name string, h Handler, statuses ...string) {
	set := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{name: name, statuses: set, handler: h})
	b.mu.Unlock()
	b.log.Debug().Str("handler", name).Strs("statuses", statuses).Msg("manejador suscrito")
}

// Publish entrega ev a cada manejador interesado.
func (b *Bus) Publish(ctx context.Context, ev OrderEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if len(s.statuses) > 0 && !s.statuses[ev.NewStatus] {
			continue
		}
		if err := b.dispatch(ctx, s, ev); err != nil {
			b.log.Error().Err(err).
				Str("handler", s.name).
				Str("order_id", ev.OrderID).
				Str("new_status", ev.NewStatus).
				Msg("manejador de eventos falló")
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, s subscription, ev OrderEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pánico en manejador: %v", r)
		}
	}()
	return s.handler.Handle(ctx, ev)
}

package feed

import (
	"context"
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 16

// Hub reparte los eventos de cada empresa a sus clientes SSE conectados.
// Un cliente lento pierde eventos en vez de frenar a los demás.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[chan OrderEvent]struct{}
	dropped atomic.Int64
}

// NewHub construye el hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[chan OrderEvent]struct{})}
}

// Subscribe registra un cliente de la empresa. cancel lo desconecta y cierra el canal.
func (h *Hub) Subscribe(companyID string) (events <-chan OrderEvent, cancel func()) {
	ch := make(chan OrderEvent, subscriberBuffer)
	h.mu.Lock()
	if h.clients[companyID] == nil {
		h.clients[companyID] = make(map[chan OrderEvent]struct{})
	}
	h.clients[companyID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients[companyID], ch)
			if len(h.clients[companyID]) == 0 {
				delete(h.clients, companyID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Handle implementa Handler.
func (h *Hub) Handle(_ context.Context, ev OrderEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients[ev.CompanyID] {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Clients cantidad de clientes conectados (todas las empresas).
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Dropped eventos descartados por clientes lentos.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

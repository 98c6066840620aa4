package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Mayorista-api/internal/application/feed"
)

const keepAliveInterval = 20 * time.Second

// StreamHandler envía a cada cliente los cambios de estado de pedidos de su empresa (Server-Sent Events).
type StreamHandler struct {
	hub *feed.Hub
	// done se cierra al apagar el servidor para terminar los streams abiertos.
	done <-chan struct{}
	log  zerolog.Logger
}

// NewStreamHandler construye el handler. shutdown se cancela al apagar la API.
func NewStreamHandler(shutdown context.Context, hub *feed.Hub, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, done: shutdown.Done(), log: log.With().Str("component", "order_stream").Logger()}
}

// Stream GET /api/orders/stream
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	events, cancel := h.hub.Subscribe(companyID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With().Str("company_id", companyID).Logger()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		log.Debug().Msg("cliente SSE conectado")
		if err := writeComment(w, "conectado"); err != nil {
			return
		}
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				if err := writeComment(w, "ping"); err != nil {
					log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, ev feed.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: order_status\nid: %s\ndata: %s\n\n", ev.OrderID, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.Flush()
}

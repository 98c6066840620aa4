package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Mayorista-api/internal/application/feed"
	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// Publisher recibe los eventos decodificados (feed.Bus).
type Publisher interface {
	Publish(ctx context.Context, ev feed.OrderEvent)
}

// ReconnectRecorder cuenta reconexiones (metrics.Metrics).
type ReconnectRecorder interface {
	Reconnected()
}

// Listener mantiene una conexión dedicada con LISTEN sobre el canal de eventos de pedidos y
// publica cada notificación en el bus. Tras una caída reintenta con backoff exponencial; el
// contador de intentos se reinicia cada vez que vuelve a escuchar.
type Listener struct {
	connect  func(ctx context.Context) (notificationConn, error)
	channel  string
	bus      Publisher
	recorder ReconnectRecorder
	backoff  func() backoff.BackOff
	log      zerolog.Logger
}

// notificationConn subconjunto de *pgx.Conn que usa el listener.
type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error)
	WaitForNotification(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// NewListener construye el listener. recorder puede ser nil.
func NewListener(connCfg *pgx.ConnConfig, cfg config.FeedConfig, bus Publisher, recorder ReconnectRecorder, log zerolog.Logger) *Listener {
	return &Listener{
		connect: func(ctx context.Context) (notificationConn, error) {
			conn, err := pgx.ConnectConfig(ctx, connCfg)
			if err != nil {
				return nil, err
			}
			return pgxNotificationConn{conn}, nil
		},
		channel:  cfg.Channel,
		bus:      bus,
		recorder: recorder,
		backoff:  reconnectBackOff(cfg.BaseBackoff, cfg.MaxReconnects),
		log:      log.With().Str("component", "order_listener").Str("channel", cfg.Channel).Logger(),
	}
}

// reconnectBackOff base, base*2, base*4... hasta max reintentos, sin aleatoriedad.
func reconnectBackOff(base time.Duration, max int) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = base << 10
		b.MaxElapsedTime = 0
		b.Reset()
		return backoff.WithMaxRetries(b, uint64(max))
	}
}

// Run escucha hasta que ctx se cancele (devuelve nil) o se agoten los reintentos (devuelve error).
func (l *Listener) Run(ctx context.Context) error {
	b := l.backoff()
	for {
		listening, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if listening {
			b.Reset()
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			l.log.Error().Err(err).Msg("reintentos de conexión agotados, listener detenido")
			return fmt.Errorf("feed: reintentos agotados: %w", err)
		}
		l.log.Warn().Err(err).Dur("retry_in", wait).Msg("conexión del listener perdida, reintentando")
		if l.recorder != nil {
			l.recorder.Reconnected()
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// listen conecta, ejecuta LISTEN y procesa notificaciones hasta un error.
// listening indica si se llegó a escuchar.
func (l *Listener) listen(ctx context.Context) (listening bool, err error) {
	conn, err := l.connect(ctx)
	if err != nil {
		return false, fmt.Errorf("conectar: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	l.log.Info().Msg("escuchando eventos de pedidos")

	for {
		payload, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true, err
			}
			return true, fmt.Errorf("esperar notificación: %w", err)
		}
		ev, err := feed.Decode(payload)
		if err != nil {
			l.log.Warn().Err(err).Str("payload", payload).Msg("notificación descartada")
			continue
		}
		l.bus.Publish(ctx, ev)
	}
}

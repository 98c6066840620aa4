// Package email envío de correo por SMTP (gomail) con reintentos y límite de tasa.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Mayorista-api/internal/application/notify"
	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// MaxAttempts intentos por correo (el primero más dos reintentos).
const MaxAttempts = 3

// dialer abstrae gomail.Dialer para pruebas.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envía correos por SMTP con backoff exponencial entre intentos.
type SMTPSender struct {
	dialer  dialer
	from    string
	limiter *rate.Limiter
	backoff func() backoff.BackOff
	log     zerolog.Logger
}

// NewSMTPSender construye el sender desde la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig, log zerolog.Logger) *SMTPSender {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 5
	}
	return newSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From,
		rate.NewLimiter(rate.Limit(perSec), perSec), log)
}

func newSender(d dialer, from string, limiter *rate.Limiter, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer:  d,
		from:    from,
		limiter: limiter,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.Multiplier = 2
			b.MaxElapsedTime = 0
			return b
		},
		log: log.With().Str("component", "email").Logger(),
	}
}

// Send espera turno en el limitador y envía con hasta MaxAttempts intentos.
func (s *SMTPSender) Send(ctx context.Context, msg notify.EmailMessage) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("email: limitador: %w", err)
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	attempts := 0
	op := func() error {
		attempts++
		err := s.dialer.DialAndSend(m)
		if err != nil {
			s.log.Warn().Err(err).Int("attempt", attempts).Str("to", msg.To).Msg("envío de correo fallido")
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(s.backoff(), MaxAttempts-1), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return attempts, fmt.Errorf("email: enviar a %s tras %d intentos: %w", msg.To, attempts, err)
	}
	return attempts, nil
}

// LogSender modo desarrollo: registra el correo en el log y lo da por enviado.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender construye el sender de desarrollo.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "email").Logger()}
}

// Send implementa notify.EmailSender.
func (s *LogSender) Send(_ context.Context, msg notify.EmailMessage) (int, error) {
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("correo (modo dev, no enviado)")
	return 1, nil
}

// NewSender elige SMTP o modo desarrollo según la configuración.
func NewSender(cfg config.SMTPConfig, log zerolog.Logger) notify.EmailSender {
	if cfg.Host == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg, log)
}

// DeliveryRecorder cuenta correos enviados y fallidos (metrics.Metrics).
type DeliveryRecorder interface {
	EmailSent(ok bool)
}

type instrumented struct {
	next     notify.EmailSender
	recorder DeliveryRecorder
}

// Instrumented registra el resultado de cada envío de next.
func Instrumented(next notify.EmailSender, recorder DeliveryRecorder) notify.EmailSender {
	return &instrumented{next: next, recorder: recorder}
}

func (s *instrumented) Send(ctx context.Context, msg notify.EmailMessage) (int, error) {
	attempts, err := s.next.Send(ctx, msg)
	s.recorder.EmailSent(err == nil)
	return attempts, err
}

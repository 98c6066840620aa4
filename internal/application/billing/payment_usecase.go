package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// Tipos de evento de la pasarela.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// Resultados del webhook.
const (
	ResultProcessed = "processed"
	ResultDuplicate = "duplicate"
	ResultIgnored   = "ignored"
)

// IdempotencyTTL tiempo que se recuerda un evento procesado.
const IdempotencyTTL = 72 * time.Hour

// PaymentEvent cuerpo del webhook de la pasarela.
type PaymentEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		OrderID string          `json:"order_id"`
		Amount  decimal.Decimal `json:"amount"`
		Method  string          `json:"method"`
		Reason  string          `json:"reason"`
	} `json:"data"`
}

// PaymentUseCase procesa los eventos firmados de la pasarela de pagos.
type PaymentUseCase struct {
	store    repository.Store
	tx       repository.TxRunner
	credit   CreditPayments
	events   IdempotencyStore
	notifier Notifier
	secret   []byte
	log      zerolog.Logger
	now      func() time.Time
}

// NewPaymentUseCase construye el caso de uso. secret es el secreto compartido de la firma HMAC.
func NewPaymentUseCase(store repository.Store, tx repository.TxRunner, credit CreditPayments, events IdempotencyStore,
	notifier Notifier, secret string, log zerolog.Logger) *PaymentUseCase {
	return &PaymentUseCase{
		store:    store,
		tx:       tx,
		credit:   credit,
		events:   events,
		notifier: notifier,
		secret:   []byte(secret),
		log:      log.With().Str("component", "payments").Logger(),
		now:      time.Now,
	}
}

// VerifySignature compara la firma hex HMAC-SHA256 del cuerpo en tiempo constante.
func VerifySignature(secret, body []byte, signature string) bool {
	if len(secret) == 0 || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign firma body con secret (hex). Útil para pruebas y clientes internos.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleWebhook verifica la firma, descarta eventos repetidos y aplica el evento.
// Si el procesamiento falla la marca de idempotencia se libera para que la pasarela reintente.
func (uc *PaymentUseCase) HandleWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	if !VerifySignature(uc.secret, body, signature) {
		return "", domain.ErrInvalidSignature
	}
	var ev PaymentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	if ev.ID == "" || ev.Type == "" {
		return "", fmt.Errorf("%w: id y type son obligatorios", domain.ErrInvalidInput)
	}

	key := "payment_event:" + ev.ID
	first, err := uc.events.MarkProcessed(ctx, key, IdempotencyTTL)
	if err != nil {
		return "", fmt.Errorf("idempotencia: %w", err)
	}
	if !first {
		return ResultDuplicate, nil
	}

	log := uc.log.With().Str("event_id", ev.ID).Str("type", ev.Type).Str("order_id", ev.Data.OrderID).Logger()
	var result string
	switch ev.Type {
	case EventPaymentSucceeded:
		result, err = uc.succeeded(ctx, &ev)
	case EventPaymentFailed:
		result, err = uc.failed(ctx, &ev)
	default:
		log.Warn().Msg("evento de pago ignorado")
		return ResultIgnored, nil
	}
	if err != nil {
		if ferr := uc.events.Forget(ctx, key); ferr != nil {
			log.Error().Err(ferr).Msg("liberar marca de idempotencia")
		}
		log.Error().Err(err).Msg("procesar evento de pago")
		return "", err
	}
	log.Info().Str("result", result).Msg("evento de pago procesado")
	return result, nil
}

func (uc *PaymentUseCase) succeeded(ctx context.Context, ev *PaymentEvent) (string, error) {
	if !ev.Data.Amount.IsPositive() || ev.Data.OrderID == "" {
		return "", fmt.Errorf("%w: order_id y amount > 0 son obligatorios", domain.ErrInvalidInput)
	}
	var o *entity.Order
	duplicate := false
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		var err error
		o, err = tx.Orders.GetForUpdate(ctx, ev.Data.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		err = tx.Payments.Create(ctx, &entity.Payment{
			ID:         uuid.New().String(),
			CompanyID:  o.CompanyID,
			OrderID:    o.ID,
			ExternalID: ev.ID,
			Amount:     ev.Data.Amount,
			Method:     ev.Data.Method,
			Status:     "succeeded",
			ReceivedAt: now,
			CreatedAt:  now,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			duplicate = true
			return nil
		}
		if err != nil {
			return err
		}

		o.AmountPaid = o.AmountPaid.Add(ev.Data.Amount)
		switch {
		case o.AmountPaid.GreaterThanOrEqual(o.Total):
			o.PaymentStatus = entity.PaymentPaid
		case o.AmountPaid.IsPositive():
			o.PaymentStatus = entity.PaymentPartial
		}
		o.UpdatedAt = now
		if err := tx.Orders.UpdatePayment(ctx, o); err != nil {
			return err
		}
		if o.PaymentStatus == entity.PaymentPaid {
			inv, err := tx.Invoices.GetByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			if inv != nil && inv.Status == entity.InvoiceIssued {
				if err := tx.Invoices.UpdateStatus(ctx, inv.ID, entity.InvoicePaid); err != nil {
					return err
				}
			}
		}
		if o.PaymentMethod == entity.PaymentMethodCredit {
			orderID := o.ID
			return uc.credit.RecordPaymentInTx(ctx, tx, o.CustomerID, ev.Data.Amount, &orderID, "webhook")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if duplicate {
		return ResultDuplicate, nil
	}
	uc.notify(ctx, o.CompanyID, "payment_received", "Pago recibido",
		fmt.Sprintf("Pedido %s: pago de %s (%s).", o.Number, ev.Data.Amount.StringFixed(2), o.PaymentStatus))
	return ResultProcessed, nil
}

func (uc *PaymentUseCase) failed(ctx context.Context, ev *PaymentEvent) (string, error) {
	o, err := uc.store.Orders.GetByID(ctx, ev.Data.OrderID)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "", domain.ErrNotFound
	}
	reason := ev.Data.Reason
	if reason == "" {
		reason = "sin detalle"
	}
	uc.notify(ctx, o.CompanyID, "payment_failed", "Pago rechazado",
		fmt.Sprintf("Pedido %s: la pasarela rechazó un pago de %s (%s).", o.Number, ev.Data.Amount.StringFixed(2), reason))
	return ResultProcessed, nil
}

func (uc *PaymentUseCase) notify(ctx context.Context, companyID, kind, title, body string) {
	if err := uc.notifier.NotifyRole(ctx, companyID, entity.RoleFinanzas, kind, title, body); err != nil {
		uc.log.Warn().Err(err).Msg("avisar a finanzas")
	}
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/domain"
)

// SignatureHeader cabecera con la firma HMAC-SHA256 (hex) del cuerpo.
const SignatureHeader = "X-Signature"

// WebhookRecorder cuenta los eventos recibidos por resultado.
type WebhookRecorder interface {
	WebhookHandled(result string)
}

// PaymentWebhookHandler recibe los eventos de la pasarela de pagos.
type PaymentWebhookHandler struct {
	uc       *billing.PaymentUseCase
	recorder WebhookRecorder
}

// NewPaymentWebhookHandler construye el handler. recorder puede ser nil.
func NewPaymentWebhookHandler(uc *billing.PaymentUseCase, recorder WebhookRecorder) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{uc: uc, recorder: recorder}
}

// Handle godoc
// @Summary      Webhook de pagos
// @Description  Firma en X-Signature. Un evento repetido responde 200 con status duplicate.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Signature  header  string  true  "HMAC-SHA256 hex del cuerpo"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /webhooks/payments [post]
func (h *PaymentWebhookHandler) Handle(c *fiber.Ctx) error {
	result, err := h.uc.HandleWebhook(c.UserContext(), c.Body(), c.Get(SignatureHeader))
	if err != nil {
		h.record(webhookFailure(err))
		return writeError(c, err)
	}
	h.record(result)
	return c.JSON(fiber.Map{"status": result})
}

func (h *PaymentWebhookHandler) record(result string) {
	if h.recorder != nil {
		h.recorder.WebhookHandled(result)
	}
}

func webhookFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden relevante: los específicos antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrCreditNotFound, fiber.StatusNotFound, "CREDIT_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrCreditNotActive, fiber.StatusUnprocessableEntity, "CREDIT_NOT_ACTIVE"},
	{domain.ErrCreditLimitExceeded, fiber.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED"},
	{domain.ErrOverdueCharges, fiber.StatusUnprocessableEntity, "OVERDUE_CHARGES"},
	{domain.ErrGenerationInProgress, fiber.StatusConflict, "GENERATION_IN_PROGRESS"},
	{domain.ErrAlreadyGenerated, fiber.StatusConflict, "ALREADY_GENERATED"},
	{domain.ErrInvalidSignature, fiber.StatusUnauthorized, "INVALID_SIGNATURE"},
	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
	{domain.ErrCaptchaFailed, fiber.StatusBadRequest, "CAPTCHA_FAILED"},
}

// writeError traduce errores de dominio a dto.ErrorResponse con su código HTTP.
// Lo no reconocido es 500 y se registra; el detalle interno no se expone.
func writeError(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: rerr.code, Message: rerr.message, Details: rerr.details})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// ErrorHandler manejador de errores de Fiber: errores de Fiber conservan su código, el resto pasa por writeError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: ferr.Message})
	}
	return writeError(c, err)
}

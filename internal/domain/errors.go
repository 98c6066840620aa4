package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Máquinas de estado (pedidos, cotizaciones, leads, pedidos recurrentes, crédito).
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// Crédito.
	ErrCreditNotFound      = errors.New("el cliente no tiene términos de crédito")
	ErrCreditNotActive     = errors.New("los términos de crédito no están activos")
	ErrCreditLimitExceeded = errors.New("el monto supera el crédito disponible")
	ErrOverdueCharges      = errors.New("el cliente tiene cargos vencidos")

	// Pedidos recurrentes.
	ErrGenerationInProgress = errors.New("la generación de este pedido recurrente ya está en curso")
	ErrAlreadyGenerated     = errors.New("la ocurrencia ya fue generada")

	// Integraciones.
	ErrInvalidSignature = errors.New("firma inválida")
	ErrInvalidToken     = errors.New("token inválido o expirado")
	ErrCaptchaFailed    = errors.New("verificación captcha fallida")
)

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
)

// CreditHandler términos de crédito de clientes y su libro de movimientos.
type CreditHandler struct {
	uc *credit.UseCase
}

// NewCreditHandler construye el handler.
func NewCreditHandler(uc *credit.UseCase) *CreditHandler {
	return &CreditHandler{uc: uc}
}

// Request godoc
// @Summary      Solicitar crédito para un cliente
// @Description  Crea términos pending con puntaje de elegibilidad y límite sugerido.
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestCreditRequest  true  "Cliente"
// @Success      201   {object}  dto.CreditTermsResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/requests [post]
func (h *CreditHandler) Request(c *fiber.Ctx) error {
	var in dto.RequestCreditRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Request(c.UserContext(), GetCompanyID(c), in.CustomerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Approve godoc
// @Summary      Aprobar crédito
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de los términos"
// @Param        body  body  dto.ApproveCreditRequest  true  "Límite y plazo (1..180 días)"
// @Success      200   {object}  dto.CreditTermsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/{id}/approve [post]
func (h *CreditHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveCreditRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Approve(c.UserContext(), GetCompanyID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CreditHandler) Reject(c *fiber.Ctx) error {
	out, err := h.uc.Reject(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Suspend POST /api/credit/:id/suspend (motivo obligatorio).
func (h *CreditHandler) Suspend(c *fiber.Ctx) error {
	var in dto.SuspendCreditRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Suspend(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reactivate POST /api/credit/:id/reactivate. 422 OVERDUE_CHARGES si hay cartera vencida.
func (h *CreditHandler) Reactivate(c *fiber.Ctx) error {
	out, err := h.uc.Reactivate(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AdjustLimit POST /api/credit/:id/limit. El nuevo límite no puede quedar por debajo del saldo.
func (h *CreditHandler) AdjustLimit(c *fiber.Ctx) error {
	var in dto.AdjustLimitRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AdjustLimit(c.UserContext(), GetCompanyID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CreditHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByCustomer GET /api/customers/:id/credit
func (h *CreditHandler) GetByCustomer(c *fiber.Ctx) error {
	out, err := h.uc.GetByCustomer(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ledger GET /api/customers/:id/credit/ledger (más reciente primero)
func (h *CreditHandler) Ledger(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.Ledger(c.UserContext(), GetCompanyID(c), c.Params("id"), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
)

// QuoteHandler cotizaciones (oportunidades).
type QuoteHandler struct {
	uc *sales.QuoteUseCase
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *sales.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización en borrador
// @Description  Líneas con unit_price 0 toman el precio del catálogo.
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuoteRequest  true  "Cliente y líneas"
// @Success      201   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *QuoteHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/quotes?status=&customer_id=
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), c.Query("customer_id"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Send POST /api/quotes/:id/send: draft -> sent y correo con enlaces de aprobación.
func (h *QuoteHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *QuoteHandler) Accept(c *fiber.Ctx) error {
	out, err := h.uc.Accept(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *QuoteHandler) Reject(c *fiber.Ctx) error {
	out, err := h.uc.Reject(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir cotización aceptada en pedido
// @Description  Con payment_method=credit se carga el total al cupo; un error de crédito revierte todo.
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la cotización"
// @Param        body  body  dto.ConvertQuoteRequest  true  "Medio de pago"
// @Success      201   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertQuoteRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Convert(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

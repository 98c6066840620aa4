package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/crm"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
)

// LeadHandler prospectos del CRM y formulario público de captura.
type LeadHandler struct {
	uc *crm.LeadUseCase
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *crm.LeadUseCase) *LeadHandler {
	return &LeadHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lead
// @Tags         crm
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLeadRequest  true  "Datos del lead"
// @Success      201   {object}  dto.LeadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/leads [post]
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLeadRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Capture godoc
// @Summary      Formulario web público de contacto
// @Description  Sin token. Con reCAPTCHA configurado captcha_token es obligatorio.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PublicLeadRequest  true  "Formulario"
// @Success      201   {object}  dto.LeadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /public/leads [post]
func (h *LeadHandler) Capture(c *fiber.Ctx) error {
	var in dto.PublicLeadRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CapturePublic(c.UserContext(), in, c.IP())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/leads?status=qualified (ordenados por puntaje)
func (h *LeadHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *LeadHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus PATCH /api/leads/:id/status
func (h *LeadHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateLeadStatusRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Convert POST /api/leads/:id/convert: lead calificado -> cliente.
func (h *LeadHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertLeadRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Convert(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
)

// CustomerHandler maneja las peticiones HTTP para Customer (protegido).
type CustomerHandler struct {
	uc *usecase.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create crea un cliente. El NIT es único por empresa.
// POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/customers/:id
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/customers
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update actualización parcial.
// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

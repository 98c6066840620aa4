package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
)

// StandingOrderHandler plantillas de pedidos recurrentes y su historial de generación.
type StandingOrderHandler struct {
	uc *standing.UseCase
}

// NewStandingOrderHandler construye el handler.
func NewStandingOrderHandler(uc *standing.UseCase) *StandingOrderHandler {
	return &StandingOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido recurrente
// @Description  weekly/biweekly requieren day_of_week (0=domingo); monthly/quarterly requieren day_of_month.
// @Tags         standing-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStandingOrderRequest  true  "Plantilla"
// @Success      201   {object}  dto.StandingOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/standing-orders [post]
func (h *StandingOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStandingOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *StandingOrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StandingOrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/standing-orders/:id. Cambiar la frecuencia o los días recalcula la próxima fecha.
func (h *StandingOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateStandingOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StandingOrderHandler) Pause(c *fiber.Ctx) error {
	out, err := h.uc.Pause(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StandingOrderHandler) Resume(c *fiber.Ctx) error {
	out, err := h.uc.Resume(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StandingOrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GenerateNow POST /api/standing-orders/:id/generate: genera la ocurrencia de hoy.
// 409 si la misma ocurrencia se está generando o ya se generó.
func (h *StandingOrderHandler) GenerateNow(c *fiber.Ctx) error {
	out, err := h.uc.GenerateNow(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History GET /api/standing-orders/:id/generations
func (h *StandingOrderHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetCompanyID(c), c.Params("id"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApproveGeneration POST /api/standing-orders/generations/:id/approve (envía la cotización).
func (h *StandingOrderHandler) ApproveGeneration(c *fiber.Ctx) error {
	out, err := h.uc.ApproveGeneration(c.UserContext(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *StandingOrderHandler) RejectGeneration(c *fiber.Ctx) error {
	out, err := h.uc.RejectGeneration(c.UserContext(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RunDue POST /api/standing-orders/run-due (admin): corrida manual del generador.
func (h *StandingOrderHandler) RunDue(c *fiber.Ctx) error {
	out, err := h.uc.RunDue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/Mayorista-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen comercial de la empresa
// @Description  Pedidos por estado, ingresos del mes, cotizaciones abiertas, exposición y cartera vencida,
// @Description  y pedidos recurrentes de los próximos 7 días.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

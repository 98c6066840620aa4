package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
)

// CompanyHandler maneja las peticiones HTTP para el recurso Company.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear empresa (con sus módulos activos)
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener empresa por ID
// @Tags         companies
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar empresas
// @Tags         companies
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.CompanyListResponse
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

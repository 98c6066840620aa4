package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
)

// moduleChecker lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule verifica que la empresa del token tenga el módulo activo (orders, crm, credit,
// standing_orders). Va DESPUÉS de AuthMiddleware.
//   - 401 si no hay company_id en el contexto.
//   - 403 MODULE_DISABLED si el módulo no está contratado o venció.
//   - 503 si falla la consulta.
func RequireModule(moduleName string, checker moduleChecker, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "company_id no encontrado en el token",
			})
		}

		active, err := checker.HasActiveModule(c.UserContext(), companyID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Str("module", moduleName).Msg("verificar módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' no está activo para esta empresa",
			})
		}
		return c.Next()
	}
}

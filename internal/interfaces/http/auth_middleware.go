package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/pkg/jwt"
)

// Locals keys para UserID, CompanyID y Role en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID, CompanyID y Role en c.Locals.
// Las peticiones de EventSource (Accept: text/event-stream) no pueden enviar cabeceras, así que
// para ellas se acepta el token en ?access_token=.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, code, msg := bearerToken(c)
		if code != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
		}
		userID, companyID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalCompanyID, companyID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (token, code, msg string) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		if q := c.Query("access_token"); q != "" && strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream") {
			return q, "", ""
		}
		return "", "MISSING_TOKEN", "Authorization header requerido"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "INVALID_TOKEN", "formato: Bearer <token>"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "MISSING_TOKEN", "token vacío"
	}
	return token, "", ""
}

// RequireRole permite el paso solo a los roles indicados. Va DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol (tokens anteriores al claim).
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol '" + role + "' no tiene acceso a este recurso"})
		}
		return c.Next()
	}
}

func local(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return local(c, LocalUserID) }

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string { return local(c, LocalCompanyID) }

// GetRole devuelve el rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string { return local(c, LocalRole) }

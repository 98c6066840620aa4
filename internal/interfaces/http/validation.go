package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// requestError petición mal formada o inválida (siempre 400).
type requestError struct {
	code    string
	message string
	details []dto.FieldError
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{code: code, message: message}
}

// bind decodifica el cuerpo JSON y valida las etiquetas validate del DTO.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest("INVALID_BODY", "cuerpo inválido")
	}
	return check(out)
}

// bindQuery como bind pero desde la query string.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return badRequest("INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	return check(out)
}

func check(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("VALIDATION", err.Error())
	}
	details := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.FieldError{Field: fieldPath(fe), Message: validationMessage(fe)})
	}
	return &requestError{code: "VALIDATION", message: "datos inválidos", details: details}
}

// fieldPath quita el nombre del struct raíz: "CreateQuoteRequest.items[0].product_id" -> "items[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo requerido"
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "fecha inválida, formato " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "debe tener al menos " + fe.Param() + " caracteres"
		}
		if fe.Kind() == reflect.Slice {
			return "debe tener al menos " + fe.Param() + " elementos"
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "debe tener máximo " + fe.Param() + " caracteres"
		}
		if fe.Kind() == reflect.Slice {
			return "debe tener máximo " + fe.Param() + " elementos"
		}
		return "debe ser menor o igual a " + fe.Param()
	default:
		return "valor inválido"
	}
}

// page lee limit/offset con los topes de la API (20 por defecto, máximo 100).
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

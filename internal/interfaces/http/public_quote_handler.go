package http

import (
	"bytes"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/pkg/money"
)

var quotePages = template.Must(template.New("quote").Parse(`
{{define "layout"}}<!DOCTYPE html>
<html lang="es"><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:sans-serif;max-width:560px;margin:40px auto;color:#222}button{padding:10px 24px}</style>
</head><body><h1>{{.Title}}</h1>{{template "body" .}}</body></html>{{end}}

{{define "confirm"}}{{template "layout" .}}{{end}}
{{define "result"}}{{template "layout" .}}{{end}}
{{define "error"}}{{template "layout" .}}{{end}}
`))

var quoteBodies = map[string]string{
	"confirm": `{{define "body"}}<p>Cotización <strong>{{.Number}}</strong> por <strong>{{.Total}}</strong>, válida hasta {{.ValidUntil}}.</p>
<form method="post" action="/public/quotes/respond"><input type="hidden" name="token" value="{{.Token}}">
<button type="submit">{{.Verb}}</button></form>{{end}}`,
	"result": `{{define "body"}}<p>{{.Message}}</p>{{end}}`,
	"error":  `{{define "body"}}<p>{{.Message}}</p>{{end}}`,
}

type quotePage struct {
	Title      string
	Message    string
	Number     string
	Total      string
	ValidUntil string
	Token      string
	Verb       string
}

// PublicQuoteHandler páginas que abre el cliente desde los enlaces del correo.
// GET solo muestra la confirmación; el cambio de estado se aplica con el POST del formulario,
// así los prefetch de clientes de correo no aceptan cotizaciones.
type PublicQuoteHandler struct {
	uc *sales.QuoteUseCase
}

// NewPublicQuoteHandler construye el handler.
func NewPublicQuoteHandler(uc *sales.QuoteUseCase) *PublicQuoteHandler {
	return &PublicQuoteHandler{uc: uc}
}

// Confirm GET /public/quotes/respond?token=
func (h *PublicQuoteHandler) Confirm(c *fiber.Ctx) error {
	token := c.Query("token")
	qa, err := h.uc.Preview(c.UserContext(), token)
	if err != nil {
		return h.renderError(c, err)
	}
	page := quotePage{
		Title:      "Aceptar cotización",
		Verb:       "Aceptar",
		Number:     qa.Quote.Number,
		Total:      money.Format(qa.Quote.Total),
		ValidUntil: qa.Quote.ValidUntil.Format("2006-01-02"),
		Token:      token,
	}
	if qa.Action == sales.ActionQuoteReject {
		page.Title, page.Verb = "Rechazar cotización", "Rechazar"
	}
	return render(c, fiber.StatusOK, "confirm", page)
}

// Respond POST /public/quotes/respond (form token=)
func (h *PublicQuoteHandler) Respond(c *fiber.Ctx) error {
	qa, err := h.uc.Respond(c.UserContext(), c.FormValue("token"))
	if err != nil {
		return h.renderError(c, err)
	}
	msg := "Gracias. Registramos la aceptación de la cotización " + qa.Quote.Number + "."
	if qa.Action == sales.ActionQuoteReject {
		msg = "Registramos el rechazo de la cotización " + qa.Quote.Number + "."
	}
	return render(c, fiber.StatusOK, "result", quotePage{Title: "Respuesta registrada", Message: msg})
}

func (h *PublicQuoteHandler) renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return render(c, fiber.StatusBadRequest, "error", quotePage{
			Title: "Enlace inválido", Message: "El enlace no es válido o ya expiró.",
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		return render(c, fiber.StatusConflict, "error", quotePage{
			Title: "Cotización no disponible", Message: "Esta cotización ya fue respondida o está vencida.",
		})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("respuesta pública de cotización")
		return render(c, fiber.StatusInternalServerError, "error", quotePage{
			Title: "Error", Message: "No pudimos procesar la solicitud. Intente más tarde.",
		})
	}
}

func render(c *fiber.Ctx, status int, name string, page quotePage) error {
	t, err := quotePages.Clone()
	if err != nil {
		return err
	}
	if _, err := t.Parse(quoteBodies[name]); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, page); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// Package pdf genera la factura y la lista de empaque de un pedido con Maroto v2.
//
// Layout A4 de la factura:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  Empresa + NIT               │  N° Factura + Fechas         │
//	│  Cliente: nombre / NIT / dirección de envío                 │
//	│  TABLA: Cant | Producto | P.Unit | IVA | Subtotal           │
//	│  TOTALES: Subtotal / Impuestos / Total                      │
//	│  QR de verificación + condiciones de pago                   │
//	└─────────────────────────────────────────────────────────────┘
//
// La lista de empaque reutiliza encabezado y cliente y solo lista SKU, producto y cantidad.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	mentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/pkg/money"
	"github.com/jhoicas/Mayorista-api/pkg/nit"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ billing.DocumentRenderer = (*Renderer)(nil)

// Renderer implementa billing.DocumentRenderer.
type Renderer struct{}

// NewRenderer construye el generador.
func NewRenderer() *Renderer { return &Renderer{} }

// RenderInvoice genera el PDF de la factura.
func (r *Renderer) RenderInvoice(_ context.Context, inv *entity.Invoice, o *entity.Order, company *entity.Company, customer *entity.Customer) ([]byte, error) {
	m := maroto.New(pageConfig("Factura "+inv.Number, company.Name))

	m.AddRows(headerRow(company, "FACTURA DE VENTA", inv.Number,
		"Emisión: "+inv.IssueDate.Format("02/01/2006"),
		"Vence: "+inv.DueDate.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(customer, o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeader(
		cell{"Cant.", 1, align.Center},
		cell{"Producto", 5, align.Left},
		cell{"Precio Unit.", 2, align.Right},
		cell{"IVA%", 1, align.Center},
		cell{"Subtotal", 3, align.Right},
	))
	for _, it := range o.Items {
		m.AddRows(row.New(7).Add(
			col.New(1).Add(text.New(money.Quantity(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Format(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(it.TaxRate.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(money.Format(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(inv, o))

	return generate(m)
}

// RenderPackingList genera la lista de empaque del pedido (sin precios).
func (r *Renderer) RenderPackingList(_ context.Context, o *entity.Order, company *entity.Company, customer *entity.Customer) ([]byte, error) {
	m := maroto.New(pageConfig("Lista de empaque "+o.Number, company.Name))

	m.AddRows(headerRow(company, "LISTA DE EMPAQUE", o.Number,
		"Pedido: "+o.CreatedAt.Format("02/01/2006"), ""))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(customer, o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeader(
		cell{"SKU", 3, align.Left},
		cell{"Producto", 6, align.Left},
		cell{"Cantidad", 2, align.Right},
		cell{"OK", 1, align.Center},
	))
	for _, it := range o.Items {
		m.AddRows(row.New(7).Add(
			col.New(3).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(it.Name, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(money.Quantity(it.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New("[  ]", props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	if o.Notes != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+o.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	return generate(m)
}

func pageConfig(title, author string) *mentity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow empresa a la izquierda; tipo de documento, número y fechas a la derecha.
func headerRow(company *entity.Company, title, number, date1, date2 string) core.Row {
	right := col.New(5).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
		text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
		text.New(date1, props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
	)
	if date2 != "" {
		right.Add(text.New(date2, props.Text{Size: 8, Align: align.Right, Top: 17, Color: colorGray}))
	}
	return row.New(22).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+nit.Format(company.NIT), props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New(fmt.Sprintf("%s | %s | %s",
				nonEmpty(company.Address, "-"), nonEmpty(company.Phone, "-"), nonEmpty(company.Email, "-"),
			), props.Text{Size: 7, Top: 15, Color: colorGray}),
		),
		right,
	)
}

func customerRow(customer *entity.Customer, o *entity.Order) core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
				customer.TaxID, nonEmpty(customer.Email, "-"), nonEmpty(customer.Phone, "-"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New("Envío: "+nonEmpty(o.ShippingAddress, customer.ShippingAddress),
				props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

type cell struct {
	label string
	size  int
	align align.Type
}

func tableHeader(cells ...cell) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(label("Subtotal:", 1), label("Impuestos:", 6), label("TOTAL:", 12)),
		col.New(3).Add(
			value(money.Format(inv.Subtotal), 1),
			value(money.Format(inv.Tax), 6),
			text.New(money.Format(inv.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 12, Color: colorPrimary}),
		),
	)
}

// footerRow QR con número y total para verificación manual, más condiciones de pago.
func footerRow(inv *entity.Invoice, o *entity.Order) core.Row {
	terms := "Pago anticipado."
	if o.PaymentMethod == entity.PaymentMethodCredit {
		terms = "Venta a crédito. Pagar antes del " + inv.DueDate.Format("02/01/2006") + "."
	}
	qr := fmt.Sprintf("%s|%s|%s", inv.Number, o.Number, inv.Total.StringFixed(2))
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Pedido "+o.Number, props.Text{Style: fontstyle.Bold, Size: 9, Top: 4, Left: 3}),
			text.New(terms, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("Conserve este documento como soporte de la compra.", props.Text{Size: 7, Top: 16, Left: 3, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

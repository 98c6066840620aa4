// Package money formatea importes para correos y PDF (es-CO: separador de miles con punto).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// Format devuelve el importe con símbolo y dos decimales, ej: "$ 1.234.567,50".
func Format(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return printer.Sprintf("$ %.2f", f)
}

// Quantity formatea cantidades sin ceros decimales sobrantes.
func Quantity(v decimal.Decimal) string {
	if v.Equal(v.Truncate(0)) {
		return printer.Sprintf("%d", v.IntPart())
	}
	f, _ := v.Float64()
	return printer.Sprintf("%.2f", f)
}

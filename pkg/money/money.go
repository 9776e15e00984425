// Package money redondea y formatea importes solo al presentarlos.
// El cálculo siempre trabaja con decimal.Decimal exacto.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale agrupación de miles india (12,34,567.00).
const DefaultLocale = "en-IN"

// DisplayPlaces decimales mostrados.
const DisplayPlaces = 2

// Round redondea a DisplayPlaces, mitad lejos de cero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// Formatter formatea importes según un locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter crea un formateador; un locale inválido cae a DefaultLocale.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale etiqueta BCP 47 efectiva.
func (f *Formatter) Locale() string { return f.tag.String() }

// Format devuelve el importe redondeado con separadores del locale.
func (f *Formatter) Format(d decimal.Decimal) string {
	v, _ := Round(d).Float64()
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(DisplayPlaces),
		number.MaxFractionDigits(DisplayPlaces),
	))
}

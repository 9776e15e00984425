package invoice

import (
	"fmt"

	"github.com/bizsuite/ledger-api/internal/domain"
)

// InvalidRateError se produce cuando una línea trae una tasa de GST no publicada.
type InvalidRateError struct {
	Index int // posición de la línea en la factura
	Rate  int
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("línea %d: tasa de GST no soportada: %d%%", e.Index, e.Rate)
}

// Is permite tratar el error como domain.ErrInvalidInput.
func (e *InvalidRateError) Is(target error) bool { return target == domain.ErrInvalidInput }

// InvalidQuantityError se produce con cantidades, precios o cargos negativos.
// Index es -1 cuando el valor pertenece a los cargos adicionales y no a una línea.
type InvalidQuantityError struct {
	Index int
	Field string
	Value string
}

func (e *InvalidQuantityError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s inválido: %s", e.Field, e.Value)
	}
	return fmt.Sprintf("línea %d: %s inválido: %s", e.Index, e.Field, e.Value)
}

// Is permite tratar el error como domain.ErrInvalidInput.
func (e *InvalidQuantityError) Is(target error) bool { return target == domain.ErrInvalidInput }

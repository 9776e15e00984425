package invoice

import (
	"fmt"

	"github.com/bizsuite/ledger-api/internal/domain"
)

// RequireNonNegativeGrandTotal rechaza snapshots cuyo descuento deja el total por debajo de cero.
// No se aplica por defecto; se activa con VALIDATION_NON_NEGATIVE_GRAND_TOTAL.
func RequireNonNegativeGrandTotal(s Snapshot) error {
	if s.GrandTotal.IsNegative() {
		return fmt.Errorf("%w: %s", domain.ErrNegativeGrandTotal, s.GrandTotal.String())
	}
	return nil
}

package billing

import (
	"context"

	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con el repositorio de facturas
// atado a ella: cabecera, líneas y desglose se guardan juntos o no se guardan.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

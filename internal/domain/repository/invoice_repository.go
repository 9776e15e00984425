package repository

import (
	"context"

	"github.com/bizsuite/ledger-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas calculadas.
// Las facturas no se actualizan: una edición crea un registro nuevo.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	CreateTaxLine(ctx context.Context, taxLine *entity.InvoiceTaxLine) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	GetTaxLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceTaxLine, error)
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Invoice, error)
}

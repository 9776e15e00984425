package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice cabecera persistida de una factura. Los montos provienen de un invoice.Snapshot;
// nunca se editan en sitio: una edición guarda un cálculo nuevo.
// CustomerID e InvoiceNumber los asigna la capa CRUD que invoca el servicio.
type Invoice struct {
	ID                   string
	OrganizationID       string
	CustomerID           string
	InvoiceNumber        string
	InvoiceDate          time.Time
	DueDate              *time.Time
	Subtotal             decimal.Decimal
	TotalGST             decimal.Decimal
	RTOCharges           decimal.Decimal
	InsuranceCharges     decimal.Decimal
	HypothecationCharges decimal.Decimal
	TotalCharges         decimal.Decimal
	DiscountAmount       decimal.Decimal
	GrandTotal           decimal.Decimal
	CreatedBy            string
	CreatedAt            time.Time
}

// InvoiceLine línea de detalle con su monto calculado.
type InvoiceLine struct {
	ID             string
	InvoiceID      string
	Position       int
	Name           string
	Quantity       decimal.Decimal
	UnitRate       decimal.Decimal
	GSTRatePercent int
	Amount         decimal.Decimal
}

// InvoiceTaxLine desglose de GST por tasa, tal como quedó en el snapshot.
type InvoiceTaxLine struct {
	InvoiceID      string
	GSTRatePercent int
	TaxableAmount  decimal.Decimal
	GSTAmount      decimal.Decimal
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea tal como la envía el editor de facturas.
type InvoiceLineRequest struct {
	Name           string          `json:"name" validate:"max=200"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitRate       decimal.Decimal `json:"unit_rate"`
	GSTRatePercent int             `json:"gst_rate_percent"`
}

// InvoiceChargesRequest cargos adicionales y descuento global.
type InvoiceChargesRequest struct {
	RTOCharges           decimal.Decimal `json:"rto_charges"`
	InsuranceCharges     decimal.Decimal `json:"insurance_charges"`
	HypothecationCharges decimal.Decimal `json:"hypothecation_charges"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
}

// ComputeInvoiceRequest body para POST /api/invoices/preview.
type ComputeInvoiceRequest struct {
	Items []InvoiceLineRequest `json:"items" validate:"dive"`
	InvoiceChargesRequest
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	CustomerID    string               `json:"customer_id" validate:"required,max=64"`
	InvoiceNumber string               `json:"invoice_number" validate:"required,max=50"`
	InvoiceDate   time.Time            `json:"invoice_date" validate:"required"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	Items         []InvoiceLineRequest `json:"items" validate:"dive"`
	InvoiceChargesRequest
}

// GSTGroupResponse un grupo del desglose por tasa.
type GSTGroupResponse struct {
	GSTRatePercent int             `json:"gst_rate_percent"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
}

// InvoiceTotalsResponse snapshot calculado. Los importes van exactos;
// Display trae los mismos valores redondeados y formateados para mostrar.
type InvoiceTotalsResponse struct {
	Subtotal       decimal.Decimal    `json:"subtotal"`
	GSTBreakdown   []GSTGroupResponse `json:"gst_breakdown"`
	TotalGST       decimal.Decimal    `json:"total_gst"`
	TotalCharges   decimal.Decimal    `json:"total_charges"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	Display        DisplayTotals      `json:"display"`
}

// DisplayTotals importes formateados según DISPLAY_LOCALE.
type DisplayTotals struct {
	Locale         string `json:"locale"`
	Subtotal       string `json:"subtotal"`
	TotalGST       string `json:"total_gst"`
	TotalCharges   string `json:"total_charges"`
	DiscountAmount string `json:"discount_amount"`
	GrandTotal     string `json:"grand_total"`
}

// InvoiceLineResponse línea persistida con su importe calculado.
type InvoiceLineResponse struct {
	Position       int             `json:"position"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitRate       decimal.Decimal `json:"unit_rate"`
	GSTRatePercent int             `json:"gst_rate_percent"`
	Amount         decimal.Decimal `json:"amount"`
}

// InvoiceResponse factura persistida para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organization_id"`
	CustomerID     string                `json:"customer_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	InvoiceDate    time.Time             `json:"invoice_date"`
	DueDate        *time.Time            `json:"due_date,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines"`
	Charges        InvoiceChargesRequest `json:"charges"`
	Totals         InvoiceTotalsResponse `json:"totals"`
	CreatedBy      string                `json:"created_by"`
	CreatedAt      time.Time             `json:"created_at"`
}

// InvoiceSummaryResponse fila del listado de facturas.
type InvoiceSummaryResponse struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceSummaryResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

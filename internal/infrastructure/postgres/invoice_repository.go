package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, organization_id, customer_id, invoice_number, invoice_date, due_date,
	subtotal, total_gst, rto_charges, insurance_charges, hypothecation_charges,
	total_charges, discount_amount, grand_total, created_by, created_at`

// Create persiste la cabecera de la factura. El número es único por organización.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.OrganizationID, inv.CustomerID, inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate,
		inv.Subtotal, inv.TotalGST, inv.RTOCharges, inv.InsuranceCharges, inv.HypothecationCharges,
		inv.TotalCharges, inv.DiscountAmount, inv.GrandTotal, inv.CreatedBy, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %s: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, position, name, quantity, unit_rate, gst_rate_percent, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Position, line.Name, line.Quantity, line.UnitRate,
		line.GSTRatePercent, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// CreateTaxLine persiste el grupo de una tasa del desglose.
func (r *InvoiceRepo) CreateTaxLine(ctx context.Context, t *entity.InvoiceTaxLine) error {
	query := `
		INSERT INTO invoice_tax_lines (invoice_id, gst_rate_percent, taxable_amount, gst_amount)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, query, t.InvoiceID, t.GSTRatePercent, t.TaxableAmount, t.GSTAmount); err != nil {
		return fmt.Errorf("insert invoice tax line: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, position, name, quantity, unit_rate, gst_rate_percent, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.Name, &l.Quantity,
			&l.UnitRate, &l.GSTRatePercent, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) GetTaxLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceTaxLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT invoice_id, gst_rate_percent, taxable_amount, gst_amount
		FROM invoice_tax_lines WHERE invoice_id = $1 ORDER BY gst_rate_percent`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice tax lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceTaxLine
	for rows.Next() {
		var t entity.InvoiceTaxLine
		if err := rows.Scan(&t.InvoiceID, &t.GSTRatePercent, &t.TaxableAmount, &t.GSTAmount); err != nil {
			return nil, fmt.Errorf("scan invoice tax line: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// ListByOrganization facturas más recientes primero.
func (r *InvoiceRepo) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Invoice, error) {
	lim, off := limitClause(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE organization_id = $1
		ORDER BY invoice_date DESC, invoice_number DESC
		LIMIT $2 OFFSET $3`, organizationID, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := row.Scan(
		&inv.ID, &inv.OrganizationID, &inv.CustomerID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate,
		&inv.Subtotal, &inv.TotalGST, &inv.RTOCharges, &inv.InsuranceCharges, &inv.HypothecationCharges,
		&inv.TotalCharges, &inv.DiscountAmount, &inv.GrandTotal, &inv.CreatedBy, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

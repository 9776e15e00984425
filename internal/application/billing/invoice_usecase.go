// Package billing orquesta el cálculo de facturas con GST y su persistencia.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/invoice"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/infrastructure/metrics"
	"github.com/bizsuite/ledger-api/pkg/money"
)

// InvoiceConfig reglas opcionales y locale de presentación.
type InvoiceConfig struct {
	RequireNonNegativeGrandTotal bool
	DisplayLocale                string
}

// InvoiceUseCase previsualiza, crea y consulta facturas.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	calc        *invoice.Calculator
	formatter   *money.Formatter
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. m puede ser nil.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	cfg InvoiceConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *InvoiceUseCase {
	var validators []invoice.Validator
	if cfg.RequireNonNegativeGrandTotal {
		validators = append(validators, invoice.RequireNonNegativeGrandTotal)
	}
	locale := cfg.DisplayLocale
	if locale == "" {
		locale = money.DefaultLocale
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		calc:        invoice.NewCalculator(validators...),
		formatter:   money.NewFormatter(locale),
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// Preview calcula el snapshot sin persistir nada. Se invoca en cada edición del formulario.
func (uc *InvoiceUseCase) Preview(ctx context.Context, in dto.ComputeInvoiceRequest) (*dto.InvoiceTotalsResponse, error) {
	snap, err := uc.calc.Compute(toLineItems(in.Items), toCharges(in.InvoiceChargesRequest))
	uc.metrics.InvoiceComputed("preview", err)
	if err != nil {
		return nil, err
	}
	totals := uc.toTotals(snap)
	return &totals, nil
}

// Create calcula el snapshot y guarda cabecera, líneas y desglose por tasa en una transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, organizationID, actorID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if organizationID == "" || in.CustomerID == "" || in.InvoiceNumber == "" || in.InvoiceDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.DueDate != nil && in.DueDate.Before(in.InvoiceDate) {
		return nil, fmt.Errorf("%w: due_date anterior a invoice_date", domain.ErrInvalidInput)
	}

	items := toLineItems(in.Items)
	charges := toCharges(in.InvoiceChargesRequest)
	snap, err := uc.calc.Compute(items, charges)
	uc.metrics.InvoiceComputed("create", err)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:                   uuid.New().String(),
		OrganizationID:       organizationID,
		CustomerID:           in.CustomerID,
		InvoiceNumber:        in.InvoiceNumber,
		InvoiceDate:          in.InvoiceDate,
		DueDate:              in.DueDate,
		Subtotal:             snap.Subtotal,
		TotalGST:             snap.TotalGST,
		RTOCharges:           charges.RTOCharges,
		InsuranceCharges:     charges.InsuranceCharges,
		HypothecationCharges: charges.HypothecationCharges,
		TotalCharges:         snap.TotalCharges,
		DiscountAmount:       snap.DiscountAmount,
		GrandTotal:           snap.GrandTotal,
		CreatedBy:            actorID,
		CreatedAt:            now,
	}
	lines := make([]*entity.InvoiceLine, 0, len(items))
	for i, it := range items {
		lines = append(lines, &entity.InvoiceLine{
			ID:             uuid.New().String(),
			InvoiceID:      inv.ID,
			Position:       i + 1,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitRate:       it.UnitRate,
			GSTRatePercent: it.GSTRatePercent,
			Amount:         it.Amount(),
		})
	}
	taxLines := make([]*entity.InvoiceTaxLine, 0, len(snap.GSTBreakdown))
	for _, rate := range snap.Rates() {
		g := snap.GSTBreakdown[rate]
		taxLines = append(taxLines, &entity.InvoiceTaxLine{
			InvoiceID:      inv.ID,
			GSTRatePercent: rate,
			TaxableAmount:  g.TaxableAmount,
			GSTAmount:      g.GSTAmount,
		})
	}

	err = uc.txRunner.RunBilling(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range lines {
			if err := invoiceRepo.CreateLine(ctx, l); err != nil {
				return err
			}
		}
		for _, tl := range taxLines {
			if err := invoiceRepo.CreateTaxLine(ctx, tl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("organization_id", organizationID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("grand_total", inv.GrandTotal.String()).
		Msg("factura creada")

	return uc.toInvoiceResponse(inv, lines, taxLines), nil
}

// Get devuelve la factura con líneas y desglose tal como se guardaron.
func (uc *InvoiceUseCase) Get(ctx context.Context, organizationID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	taxLines, err := uc.invoiceRepo.GetTaxLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toInvoiceResponse(inv, lines, taxLines), nil
}

// List lista facturas de la organización, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, organizationID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	list, err := uc.invoiceRepo.ListByOrganization(ctx, organizationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceSummaryResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, dto.InvoiceSummaryResponse{
			ID:            inv.ID,
			CustomerID:    inv.CustomerID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			GrandTotal:    inv.GrandTotal,
		})
	}
	return &dto.InvoiceListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func toLineItems(in []dto.InvoiceLineRequest) []invoice.LineItem {
	items := make([]invoice.LineItem, 0, len(in))
	for _, l := range in {
		items = append(items, invoice.LineItem{
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitRate:       l.UnitRate,
			GSTRatePercent: l.GSTRatePercent,
		})
	}
	return items
}

func toCharges(in dto.InvoiceChargesRequest) invoice.AdditionalCharges {
	return invoice.AdditionalCharges{
		RTOCharges:           in.RTOCharges,
		InsuranceCharges:     in.InsuranceCharges,
		HypothecationCharges: in.HypothecationCharges,
		DiscountAmount:       in.DiscountAmount,
	}
}

func (uc *InvoiceUseCase) toTotals(s invoice.Snapshot) dto.InvoiceTotalsResponse {
	groups := make([]dto.GSTGroupResponse, 0, len(s.GSTBreakdown))
	for _, rate := range s.Rates() {
		g := s.GSTBreakdown[rate]
		groups = append(groups, dto.GSTGroupResponse{
			GSTRatePercent: rate,
			TaxableAmount:  g.TaxableAmount,
			GSTAmount:      g.GSTAmount,
		})
	}
	return dto.InvoiceTotalsResponse{
		Subtotal:       s.Subtotal,
		GSTBreakdown:   groups,
		TotalGST:       s.TotalGST,
		TotalCharges:   s.TotalCharges,
		DiscountAmount: s.DiscountAmount,
		GrandTotal:     s.GrandTotal,
		Display:        uc.display(s.Subtotal, s.TotalGST, s.TotalCharges, s.DiscountAmount, s.GrandTotal),
	}
}

func (uc *InvoiceUseCase) display(subtotal, gst, charges, discount, grand decimal.Decimal) dto.DisplayTotals {
	return dto.DisplayTotals{
		Locale:         uc.formatter.Locale(),
		Subtotal:       uc.formatter.Format(subtotal),
		TotalGST:       uc.formatter.Format(gst),
		TotalCharges:   uc.formatter.Format(charges),
		DiscountAmount: uc.formatter.Format(discount),
		GrandTotal:     uc.formatter.Format(grand),
	}
}

func (uc *InvoiceUseCase) toInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine, taxLines []*entity.InvoiceTaxLine) *dto.InvoiceResponse {
	outLines := make([]dto.InvoiceLineResponse, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, dto.InvoiceLineResponse{
			Position:       l.Position,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitRate:       l.UnitRate,
			GSTRatePercent: l.GSTRatePercent,
			Amount:         l.Amount,
		})
	}
	groups := make([]dto.GSTGroupResponse, 0, len(taxLines))
	for _, tl := range taxLines {
		groups = append(groups, dto.GSTGroupResponse{
			GSTRatePercent: tl.GSTRatePercent,
			TaxableAmount:  tl.TaxableAmount,
			GSTAmount:      tl.GSTAmount,
		})
	}
	return &dto.InvoiceResponse{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		CustomerID:     inv.CustomerID,
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		Lines:          outLines,
		Charges: dto.InvoiceChargesRequest{
			RTOCharges:           inv.RTOCharges,
			InsuranceCharges:     inv.InsuranceCharges,
			HypothecationCharges: inv.HypothecationCharges,
			DiscountAmount:       inv.DiscountAmount,
		},
		Totals: dto.InvoiceTotalsResponse{
			Subtotal:       inv.Subtotal,
			GSTBreakdown:   groups,
			TotalGST:       inv.TotalGST,
			TotalCharges:   inv.TotalCharges,
			DiscountAmount: inv.DiscountAmount,
			GrandTotal:     inv.GrandTotal,
			Display:        uc.display(inv.Subtotal, inv.TotalGST, inv.TotalCharges, inv.DiscountAmount, inv.GrandTotal),
		},
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt,
	}
}

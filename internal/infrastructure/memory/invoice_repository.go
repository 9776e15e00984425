package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepository)(nil)

// InvoiceRepository facturas calculadas en memoria.
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]entity.Invoice
	lines    map[string][]entity.InvoiceLine
	taxLines map[string][]entity.InvoiceTaxLine
}

// NewInvoiceRepository crea el repositorio vacío.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		invoices: make(map[string]entity.Invoice),
		lines:    make(map[string][]entity.InvoiceLine),
		taxLines: make(map[string][]entity.InvoiceTaxLine),
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.invoices[inv.ID]; exists {
		return domain.ErrDuplicate
	}
	for _, other := range r.invoices {
		if other.OrganizationID == inv.OrganizationID && other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	r.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepository) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[line.InvoiceID] = append(r.lines[line.InvoiceID], *line)
	return nil
}

func (r *InvoiceRepository) CreateTaxLine(ctx context.Context, taxLine *entity.InvoiceTaxLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taxLines[taxLine.InvoiceID] = append(r.taxLines[taxLine.InvoiceID], *taxLine)
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.InvoiceLine, 0, len(r.lines[invoiceID]))
	for _, l := range r.lines[invoiceID] {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *InvoiceRepository) GetTaxLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceTaxLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.InvoiceTaxLine, 0, len(r.taxLines[invoiceID]))
	for _, l := range r.taxLines[invoiceID] {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GSTRatePercent < out[j].GSTRatePercent })
	return out, nil
}

func (r *InvoiceRepository) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Invoice, error) {
	r.mu.RLock()
	var list []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.OrganizationID == organizationID {
			inv := inv
			list = append(list, &inv)
		}
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].InvoiceDate.Equal(list[j].InvoiceDate) {
			return list[i].InvoiceDate.After(list[j].InvoiceDate)
		}
		return list[i].InvoiceNumber > list[j].InvoiceNumber
	})
	return page(list, limit, offset), nil
}

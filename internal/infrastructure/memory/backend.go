package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain/inventory"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var (
	_ repository.AnalyticsRepository     = (*Backend)(nil)
	_ repository.TransitReportRepository = (*Backend)(nil)
)

// Backend agrupa los repositorios en memoria que comparten estado (APP_STORE=memory).
type Backend struct {
	Locations *LocationRepository
	Transfers *TransferRepository
	Invoices  *InvoiceRepository
	Inventory *InventoryStore
}

// NewBackend crea un backend vacío.
func NewBackend() *Backend {
	return &Backend{
		Locations: NewLocationRepository(),
		Transfers: NewTransferRepository(),
		Invoices:  NewInvoiceRepository(),
		Inventory: NewInventoryStore(),
	}
}

// RunBilling ejecuta fn con el repositorio de facturas. En memoria no hay rollback:
// las escrituras previas a un error quedan aplicadas.
func (b *Backend) RunBilling(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error {
	return fn(b.Invoices)
}

func (b *Backend) CountActiveLocations(ctx context.Context, organizationID string) (int, error) {
	list, err := b.Locations.ListByOrganization(ctx, organizationID, true, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (b *Backend) CountTransfersByStatus(ctx context.Context, organizationID string) (map[string]int, error) {
	list, err := b.Transfers.List(ctx, repository.TransferFilter{OrganizationID: organizationID})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range list {
		counts[t.Status.String()]++
	}
	return counts, nil
}

func (b *Backend) CountBelowMinimum(ctx context.Context, organizationID string) (int, error) {
	locs, err := b.Locations.ListByOrganization(ctx, organizationID, false, 0, 0)
	if err != nil {
		return 0, err
	}
	owned := make(map[string]struct{}, len(locs))
	for _, l := range locs {
		owned[l.ID] = struct{}{}
	}
	b.Inventory.mu.RLock()
	defer b.Inventory.mu.RUnlock()
	n := 0
	for k, row := range b.Inventory.stock {
		if _, ok := owned[k.locationID]; ok && inventory.BelowMinimum(row.CurrentStock, row.MinStockLevel) {
			n++
		}
	}
	return n, nil
}

func (b *Backend) SumTransitVariance(ctx context.Context, organizationID string, from, to time.Time) (decimal.Decimal, error) {
	list, err := b.Transfers.List(ctx, repository.TransferFilter{OrganizationID: organizationID, Status: transfer.StatusCompleted})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range list {
		if t.CompletedDate == nil || t.CompletedDate.Before(from) || t.CompletedDate.After(to) {
			continue
		}
		total = total.Add(t.TotalTransitVariance())
	}
	return total, nil
}

func (b *Backend) completedBetween(ctx context.Context, organizationID string, from, to time.Time) ([]*transfer.StockTransfer, error) {
	list, err := b.Transfers.List(ctx, repository.TransferFilter{OrganizationID: organizationID, Status: transfer.StatusCompleted})
	if err != nil {
		return nil, err
	}
	out := list[:0]
	for _, t := range list {
		if t.CompletedDate != nil && !t.CompletedDate.Before(from) && !t.CompletedDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (b *Backend) GetTransitVarianceByRoute(ctx context.Context, organizationID string, from, to time.Time) ([]repository.RouteVarianceResult, error) {
	list, err := b.completedBetween(ctx, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	type route struct{ from, to string }
	byRoute := make(map[route]*repository.RouteVarianceResult)
	var order []route
	for _, t := range list {
		k := route{t.FromLocationID, t.ToLocationID}
		r, ok := byRoute[k]
		if !ok {
			r = &repository.RouteVarianceResult{FromLocationID: k.from, ToLocationID: k.to}
			byRoute[k] = r
			order = append(order, k)
		}
		r.TransferCount++
		for _, it := range t.Items {
			r.Transferred = r.Transferred.Add(it.TransferredQuantity)
			r.Received = r.Received.Add(it.ReceivedQuantity)
		}
		r.Variance = r.Transferred.Sub(r.Received)
	}
	out := make([]repository.RouteVarianceResult, 0, len(order))
	for _, k := range order {
		out = append(out, *byRoute[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Variance.Equal(out[j].Variance) {
			return out[i].Variance.GreaterThan(out[j].Variance)
		}
		if out[i].FromLocationID != out[j].FromLocationID {
			return out[i].FromLocationID < out[j].FromLocationID
		}
		return out[i].ToLocationID < out[j].ToLocationID
	})
	return out, nil
}

func (b *Backend) GetItemTransitVariance(ctx context.Context, organizationID string, from, to time.Time, limit int) ([]repository.ItemVarianceResult, error) {
	list, err := b.completedBetween(ctx, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	byItem := make(map[string]*repository.ItemVarianceResult)
	for _, t := range list {
		for _, it := range t.Items {
			r, ok := byItem[it.InventoryItemID]
			if !ok {
				r = &repository.ItemVarianceResult{ItemID: it.InventoryItemID}
				byItem[it.InventoryItemID] = r
			}
			r.TransferCount++
			r.Transferred = r.Transferred.Add(it.TransferredQuantity)
			r.Received = r.Received.Add(it.ReceivedQuantity)
			r.Variance = r.Transferred.Sub(r.Received)
		}
	}
	out := make([]repository.ItemVarianceResult, 0, len(byItem))
	for _, r := range byItem {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Variance.Equal(out[j].Variance) {
			return out[i].Variance.GreaterThan(out[j].Variance)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return page(out, limit, 0), nil
}

package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
)

// InventoryStore puerto del almacén de stock por (sede, ítem).
// Adjust debe ser atómico por clave y devolver el stock resultante, nunca negativo.
// Un ajuste cuya AdjustmentKey ya fue aplicada no se vuelve a aplicar.
type InventoryStore interface {
	GetStock(ctx context.Context, locationID, itemID string) (decimal.Decimal, error)
	Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error)
}

// Side lado del traslado en el que falló un ajuste.
type Side string

const (
	SideSource      Side = "source"
	SideDestination Side = "destination"
)

// AdjustmentFailure ajuste que el almacén no pudo aplicar para un ítem.
type AdjustmentFailure struct {
	ItemID     string
	Side       Side
	LocationID string
	Delta      decimal.Decimal
	Err        error
}

func (f AdjustmentFailure) Error() string {
	return fmt.Sprintf("ítem %s (%s %s, delta %s): %v", f.ItemID, f.Side, f.LocationID, f.Delta.String(), f.Err)
}

func (f AdjustmentFailure) Unwrap() error { return f.Err }

// ItemResult ajustes aplicados a un ítem y el stock resultante en cada sede.
type ItemResult struct {
	ItemID           string
	Transferred      decimal.Decimal
	Received         decimal.Decimal
	TransitVariance  decimal.Decimal
	SourceStock      decimal.Decimal
	DestinationStock decimal.Decimal
}

// Report resultado de una conciliación: ítems aplicados y fallas por ítem.
type Report struct {
	TransferID string
	Succeeded  []ItemResult
	Failures   []AdjustmentFailure
}

// HasFailures indica si algún ítem quedó pendiente.
func (r Report) HasFailures() bool { return len(r.Failures) > 0 }

// FailedItemIDs ítems con al menos un ajuste fallido, en el orden del traslado.
func (r Report) FailedItemIDs() []string {
	ids := make([]string, 0, len(r.Failures))
	seen := make(map[string]struct{}, len(r.Failures))
	for _, f := range r.Failures {
		if _, ok := seen[f.ItemID]; ok {
			continue
		}
		seen[f.ItemID] = struct{}{}
		ids = append(ids, f.ItemID)
	}
	return ids
}

// PartialFailureError la conciliación aplicó solo parte de los ajustes.
// El traslado sigue en approved y puede reintentarse.
type PartialFailureError struct {
	Report Report
}

func (e *PartialFailureError) Error() string {
	msgs := make([]string, 0, len(e.Report.Failures))
	for _, f := range e.Report.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("traslado %s: %d de %d ítems fallaron: %s",
		e.Report.TransferID, len(e.Report.Failures), len(e.Report.Failures)+len(e.Report.Succeeded),
		strings.Join(msgs, "; "))
}

// Unwrap expone los errores del almacén para errors.Is / errors.As.
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Report.Failures))
	for _, f := range e.Report.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Reconciler aplica los deltas de inventario de un traslado aprobado y lo completa.
type Reconciler struct {
	now func() time.Time
}

// NewReconciler construye el conciliador. now permite fijar el reloj en pruebas; nil usa time.Now.
func NewReconciler(now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{now: now}
}

// Complete descuenta TransferredQuantity en el origen y suma ReceivedQuantity en el destino
// para cada ítem, de forma independiente. Los deltas se recalculan en cada ejecución;
// el almacén evita aplicar dos veces la misma AdjustmentKey.
//
// Las precondiciones se verifican antes de cualquier llamada al almacén. Si algún ajuste
// falla se registra por ítem y lado, se continúa con los demás ítems y el traslado queda
// en approved; los ajustes ya aplicados no se revierten. Solo con todos los ítems aplicados
// el traslado pasa a completed y se estampa CompletedDate.
func (r *Reconciler) Complete(ctx context.Context, t *StockTransfer, store InventoryStore, receiverID string) (Report, error) {
	if err := t.readyToComplete(); err != nil {
		return Report{}, err
	}
	if receiverID == "" {
		return Report{}, fmt.Errorf("%w: receptor requerido", domain.ErrInvalidInput)
	}

	report := Report{TransferID: t.ID}
	for _, it := range t.Items {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, AdjustmentFailure{
				ItemID: it.InventoryItemID, Side: SideSource, LocationID: t.FromLocationID,
				Delta: it.TransferredQuantity.Neg(), Err: err,
			})
			continue
		}

		outDelta := it.TransferredQuantity.Neg()
		srcStock, err := store.Adjust(ctx, entity.AdjustmentKey{
			TransferID: t.ID,
			LocationID: t.FromLocationID,
			ItemID:     it.InventoryItemID,
			Direction:  entity.DirectionOut,
		}, outDelta)
		if err != nil {
			// Sin descuento en origen no se ingresa en destino; el reintento aplica ambos.
			report.Failures = append(report.Failures, AdjustmentFailure{
				ItemID: it.InventoryItemID, Side: SideSource, LocationID: t.FromLocationID,
				Delta: outDelta, Err: err,
			})
			continue
		}

		dstStock, err := store.Adjust(ctx, entity.AdjustmentKey{
			TransferID: t.ID,
			LocationID: t.ToLocationID,
			ItemID:     it.InventoryItemID,
			Direction:  entity.DirectionIn,
		}, it.ReceivedQuantity)
		if err != nil {
			report.Failures = append(report.Failures, AdjustmentFailure{
				ItemID: it.InventoryItemID, Side: SideDestination, LocationID: t.ToLocationID,
				Delta: it.ReceivedQuantity, Err: err,
			})
			continue
		}

		report.Succeeded = append(report.Succeeded, ItemResult{
			ItemID:           it.InventoryItemID,
			Transferred:      it.TransferredQuantity,
			Received:         it.ReceivedQuantity,
			TransitVariance:  it.TransitVariance(),
			SourceStock:      srcStock,
			DestinationStock: dstStock,
		})
	}

	if report.HasFailures() {
		return report, &PartialFailureError{Report: report}
	}
	if err := t.MarkCompleted(receiverID, r.now()); err != nil {
		return report, err
	}
	return report, nil
}

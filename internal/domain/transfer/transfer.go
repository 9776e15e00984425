// Package transfer modela el ciclo de vida de un traslado de stock entre sedes y
// la conciliación de inventario que se aplica una sola vez, al completarlo.
package transfer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain"
)

// Item línea de un traslado. TransferredQuantity (lo que sale del origen) y
// ReceivedQuantity (lo que llega al destino) pueden diferir por daño o pérdida en tránsito.
type Item struct {
	InventoryItemID     string
	RequestedQuantity   decimal.Decimal
	TransferredQuantity decimal.Decimal
	ReceivedQuantity    decimal.Decimal
}

// TransitVariance = transferido - recibido. Queda visible en el traslado para auditoría;
// no se concilia en ninguna otra parte.
func (i Item) TransitVariance() decimal.Decimal {
	return i.TransferredQuantity.Sub(i.ReceivedQuantity)
}

// StockTransfer agregado de un traslado.
type StockTransfer struct {
	ID             string
	OrganizationID string
	FromLocationID string
	ToLocationID   string
	Status         Status
	Items          []Item
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	ApprovedBy     string
	ApprovedAt     *time.Time
	ReceivedBy     string
	CompletedDate  *time.Time
	CancelledBy    string
	CancelledAt    *time.Time
	CancelReason   string
	UpdatedAt      time.Time
}

// New crea un traslado en borrador. Valida sedes distintas y cantidades no negativas.
func New(id, organizationID, fromLocationID, toLocationID, createdBy string, items []Item, now time.Time) (*StockTransfer, error) {
	if id == "" || organizationID == "" || fromLocationID == "" || toLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if fromLocationID == toLocationID {
		return nil, domain.ErrSameLocation
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: el traslado no tiene ítems", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.InventoryItemID == "" {
			return nil, fmt.Errorf("%w: ítem sin inventory_item_id", domain.ErrInvalidInput)
		}
		if _, dup := seen[it.InventoryItemID]; dup {
			return nil, fmt.Errorf("%w: ítem %s repetido", domain.ErrInvalidInput, it.InventoryItemID)
		}
		seen[it.InventoryItemID] = struct{}{}
		if err := validateQuantities(it); err != nil {
			return nil, err
		}
	}
	return &StockTransfer{
		ID:             id,
		OrganizationID: organizationID,
		FromLocationID: fromLocationID,
		ToLocationID:   toLocationID,
		Status:         StatusDraft,
		Items:          append([]Item(nil), items...),
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func validateQuantities(it Item) error {
	if it.RequestedQuantity.IsNegative() || it.TransferredQuantity.IsNegative() || it.ReceivedQuantity.IsNegative() {
		return fmt.Errorf("%w: cantidades negativas en ítem %s", domain.ErrInvalidInput, it.InventoryItemID)
	}
	return nil
}

func (t *StockTransfer) transition(target Status, now time.Time) error {
	if !t.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, t.Status, target)
	}
	t.Status = target
	t.UpdatedAt = now
	return nil
}

// Submit envía el borrador a aprobación (draft → pending).
func (t *StockTransfer) Submit(now time.Time) error {
	return t.transition(StatusPending, now)
}

// Approve autoriza el traslado (pending → approved) y registra al aprobador.
func (t *StockTransfer) Approve(approverID string, now time.Time) error {
	if approverID == "" {
		return fmt.Errorf("%w: aprobador requerido", domain.ErrInvalidInput)
	}
	if err := t.transition(StatusApproved, now); err != nil {
		return err
	}
	t.ApprovedBy = approverID
	t.ApprovedAt = &now
	return nil
}

// MarkCompleted cierra el traslado (approved → completed). Solo lo invoca el Reconciler
// después de aplicar todos los ajustes.
func (t *StockTransfer) MarkCompleted(receiverID string, now time.Time) error {
	if receiverID == "" {
		return fmt.Errorf("%w: receptor requerido", domain.ErrInvalidInput)
	}
	if err := t.transition(StatusCompleted, now); err != nil {
		return err
	}
	t.ReceivedBy = receiverID
	t.CompletedDate = &now
	return nil
}

// Cancel anula el traslado desde cualquier estado no terminal.
func (t *StockTransfer) Cancel(actorID, reason string, now time.Time) error {
	if err := t.transition(StatusCancelled, now); err != nil {
		return err
	}
	t.CancelledBy = actorID
	t.CancelReason = reason
	t.CancelledAt = &now
	return nil
}

// RecordQuantities actualiza lo transferido y lo recibido de un ítem antes de completar.
func (t *StockTransfer) RecordQuantities(itemID string, transferred, received decimal.Decimal, now time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: traslado %s", domain.ErrInvalidTransition, t.Status)
	}
	for i := range t.Items {
		if t.Items[i].InventoryItemID != itemID {
			continue
		}
		next := t.Items[i]
		next.TransferredQuantity = transferred
		next.ReceivedQuantity = received
		if err := validateQuantities(next); err != nil {
			return err
		}
		t.Items[i] = next
		t.UpdatedAt = now
		return nil
	}
	return fmt.Errorf("%w: ítem %s no pertenece al traslado", domain.ErrNotFound, itemID)
}

// TotalTransitVariance suma las diferencias transferido - recibido de todos los ítems.
func (t *StockTransfer) TotalTransitVariance() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.TransitVariance())
	}
	return total
}

// readyToComplete verifica las precondiciones de la conciliación sin tocar inventario.
func (t *StockTransfer) readyToComplete() error {
	if t.Status != StatusApproved {
		return fmt.Errorf("%w: se requiere estado approved, actual %s", domain.ErrInvalidTransition, t.Status)
	}
	if t.FromLocationID == t.ToLocationID {
		return domain.ErrSameLocation
	}
	for _, it := range t.Items {
		if it.TransferredQuantity.IsNegative() || it.ReceivedQuantity.IsNegative() {
			return fmt.Errorf("%w: cantidades negativas en ítem %s", domain.ErrInvalidInput, it.InventoryItemID)
		}
	}
	return nil
}

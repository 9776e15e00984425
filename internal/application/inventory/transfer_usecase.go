// Package inventory contiene los casos de uso de traslados entre sedes y niveles de stock.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
	"github.com/bizsuite/ledger-api/internal/infrastructure/metrics"
)

// TransferUseCase ciclo de vida de traslados y su conciliación de inventario.
type TransferUseCase struct {
	transfers  repository.TransferRepository
	locations  repository.LocationRepository
	store      transfer.InventoryStore
	reconciler *transfer.Reconciler
	ledger     repository.TransferLedgerRepository
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

// NewTransferUseCase construye el caso de uso. m puede ser nil.
func NewTransferUseCase(
	transfers repository.TransferRepository,
	locations repository.LocationRepository,
	store transfer.InventoryStore,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TransferUseCase {
	uc := &TransferUseCase{
		transfers: transfers,
		locations: locations,
		store:     store,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
	uc.reconciler = transfer.NewReconciler(func() time.Time { return uc.now() })
	return uc
}

// WithLedger habilita la consulta del ledger de ajustes (GET /api/transfers/:id/ledger).
// Con el ledger configurado, una conciliación ya iniciada fija las cantidades y bloquea la cancelación.
func (uc *TransferUseCase) WithLedger(ledger repository.TransferLedgerRepository) *TransferUseCase {
	uc.ledger = ledger
	return uc
}

// Create crea el traslado en draft, o en pending si in.Submit.
// Ambas sedes deben pertenecer a la organización y estar activas.
func (uc *TransferUseCase) Create(ctx context.Context, organizationID, actorID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.ErrSameLocation
	}
	for _, id := range []string{in.FromLocationID, in.ToLocationID} {
		if err := uc.checkLocation(ctx, organizationID, id); err != nil {
			return nil, err
		}
	}

	items := make([]transfer.Item, 0, len(in.Items))
	for _, it := range in.Items {
		transferred := it.RequestedQuantity
		if it.TransferredQuantity != nil {
			transferred = *it.TransferredQuantity
		}
		received := transferred
		if it.ReceivedQuantity != nil {
			received = *it.ReceivedQuantity
		}
		items = append(items, transfer.Item{
			InventoryItemID:     it.InventoryItemID,
			RequestedQuantity:   it.RequestedQuantity,
			TransferredQuantity: transferred,
			ReceivedQuantity:    received,
		})
	}

	now := uc.now()
	t, err := transfer.New(uuid.New().String(), organizationID, in.FromLocationID, in.ToLocationID, actorID, items, now)
	if err != nil {
		return nil, err
	}
	t.Notes = in.Notes
	if in.Submit {
		if err := t.Submit(now); err != nil {
			return nil, err
		}
	}
	if err := uc.transfers.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.logTransition(t, actorID)
	return toTransferResponse(t), nil
}

// Submit envía un borrador a aprobación.
func (uc *TransferUseCase) Submit(ctx context.Context, organizationID, actorID, id string) (*dto.TransferResponse, error) {
	return uc.mutate(ctx, organizationID, actorID, id, func(t *transfer.StockTransfer, now time.Time) error {
		return t.Submit(now)
	})
}

// Approve autoriza el traslado registrando al aprobador.
func (uc *TransferUseCase) Approve(ctx context.Context, organizationID, approverID, id string) (*dto.TransferResponse, error) {
	return uc.mutate(ctx, organizationID, approverID, id, func(t *transfer.StockTransfer, now time.Time) error {
		return t.Approve(approverID, now)
	})
}

// Cancel anula el traslado desde cualquier estado no terminal. No toca inventario, así que
// un traslado con ajustes ya aplicados no se puede cancelar: hay que completarlo.
func (uc *TransferUseCase) Cancel(ctx context.Context, organizationID, actorID, id, reason string) (*dto.TransferResponse, error) {
	return uc.mutate(ctx, organizationID, actorID, id, func(t *transfer.StockTransfer, now time.Time) error {
		if t.Status == transfer.StatusApproved {
			started, err := uc.reconciliationStarted(ctx, t.ID)
			if err != nil {
				return err
			}
			if started {
				return fmt.Errorf("%w: el traslado tiene ajustes aplicados, reintente la conciliación", domain.ErrConflict)
			}
		}
		return t.Cancel(actorID, reason, now)
	})
}

// Complete registra las cantidades reales (si vienen) y concilia el inventario.
//
// Con fallas parciales devuelve la respuesta junto con un *transfer.PartialFailureError:
// el traslado queda en approved con las cantidades guardadas, y repetir la llamada
// solo aplica los ajustes que faltan. Una vez aplicado algún ajuste las cantidades
// quedan fijas y un reintento con otras devuelve domain.ErrConflict.
func (uc *TransferUseCase) Complete(ctx context.Context, organizationID, receiverID, id string, in dto.CompleteTransferRequest) (*dto.ReconciliationResponse, error) {
	t, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if t.Status != transfer.StatusApproved {
		return nil, fmt.Errorf("%w: se requiere estado approved, actual %s", domain.ErrInvalidTransition, t.Status)
	}
	prev := t.Status
	if quantitiesChanged(t, in.Items) {
		started, err := uc.reconciliationStarted(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if started {
			return nil, fmt.Errorf("%w: la conciliación ya aplicó ajustes con las cantidades registradas", domain.ErrConflict)
		}
	}
	now := uc.now()
	for _, q := range in.Items {
		if err := t.RecordQuantities(q.InventoryItemID, q.TransferredQuantity, q.ReceivedQuantity, now); err != nil {
			return nil, err
		}
	}

	report, recErr := uc.reconciler.Complete(ctx, t, uc.store, receiverID)
	var partial *transfer.PartialFailureError
	if recErr != nil && !errors.As(recErr, &partial) {
		return nil, recErr
	}

	sides := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		sides = append(sides, string(f.Side))
		uc.log.Warn().
			Err(f.Err).
			Str("transfer_id", t.ID).
			Str("item_id", f.ItemID).
			Str("side", string(f.Side)).
			Str("location_id", f.LocationID).
			Str("delta", f.Delta.String()).
			Msg("ajuste de inventario fallido")
	}
	uc.metrics.Reconciliation(len(report.Succeeded), sides)

	// Se guarda también con fallas: las cantidades registradas deben sobrevivir al reintento.
	if err := uc.transfers.Update(ctx, t, prev); err != nil {
		return nil, err
	}
	if partial == nil {
		uc.logTransition(t, receiverID)
	}
	return toReconciliationResponse(t, report), recErr
}

// Get devuelve un traslado de la organización.
func (uc *TransferUseCase) Get(ctx context.Context, organizationID, id string) (*dto.TransferResponse, error) {
	t, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// Ledger ajustes aplicados al inventario por el traslado. Con una conciliación parcial
// muestra qué lados ya quedaron aplicados.
func (uc *TransferUseCase) Ledger(ctx context.Context, organizationID, id string) (*dto.TransferLedgerResponse, error) {
	if uc.ledger == nil {
		return nil, fmt.Errorf("ledger de traslados no configurado")
	}
	t, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledger.ListLedger(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ItemID:         e.ItemID,
			LocationID:     e.LocationID,
			Direction:      e.Direction,
			Delta:          e.Delta,
			ResultingStock: e.ResultingStock,
			Clamped:        e.Clamped,
			AppliedAt:      e.AppliedAt,
		})
	}
	return &dto.TransferLedgerResponse{TransferID: t.ID, Entries: out}, nil
}

// List lista traslados filtrando por estado y sede (origen o destino).
func (uc *TransferUseCase) List(ctx context.Context, organizationID string, in dto.TransferListRequest) (*dto.TransferListResponse, error) {
	in.DefaultPage()
	status := transfer.Status(in.Status)
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, err := uc.transfers.List(ctx, repository.TransferFilter{
		OrganizationID: organizationID,
		Status:         status,
		LocationID:     in.LocationID,
		Limit:          in.Limit,
		Offset:         in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

func (uc *TransferUseCase) mutate(ctx context.Context, organizationID, actorID, id string, fn func(*transfer.StockTransfer, time.Time) error) (*dto.TransferResponse, error) {
	t, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := fn(t, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.transfers.Update(ctx, t, prev); err != nil {
		return nil, err
	}
	uc.logTransition(t, actorID)
	return toTransferResponse(t), nil
}

// reconciliationStarted indica si el ledger ya tiene ajustes del traslado.
func (uc *TransferUseCase) reconciliationStarted(ctx context.Context, transferID string) (bool, error) {
	if uc.ledger == nil {
		return false, nil
	}
	entries, err := uc.ledger.ListLedger(ctx, transferID)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

func quantitiesChanged(t *transfer.StockTransfer, in []dto.ItemQuantitiesRequest) bool {
	for _, q := range in {
		for _, it := range t.Items {
			if it.InventoryItemID != q.InventoryItemID {
				continue
			}
			if !it.TransferredQuantity.Equal(q.TransferredQuantity) || !it.ReceivedQuantity.Equal(q.ReceivedQuantity) {
				return true
			}
		}
	}
	return false
}

func (uc *TransferUseCase) load(ctx context.Context, organizationID, id string) (*transfer.StockTransfer, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

func (uc *TransferUseCase) checkLocation(ctx context.Context, organizationID, id string) error {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: sede %s", domain.ErrNotFound, id)
	}
	if loc.OrganizationID != organizationID {
		return domain.ErrForbidden
	}
	if !loc.IsActive {
		return fmt.Errorf("%w: sede %s inactiva", domain.ErrConflict, loc.Code)
	}
	return nil
}

func (uc *TransferUseCase) logTransition(t *transfer.StockTransfer, actorID string) {
	uc.metrics.TransferTransition(t.Status.String())
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("organization_id", t.OrganizationID).
		Str("status", t.Status.String()).
		Str("actor_id", actorID).
		Msg("traslado actualizado")
}

func toTransferResponse(t *transfer.StockTransfer) *dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			InventoryItemID:     it.InventoryItemID,
			RequestedQuantity:   it.RequestedQuantity,
			TransferredQuantity: it.TransferredQuantity,
			ReceivedQuantity:    it.ReceivedQuantity,
			TransitVariance:     it.TransitVariance(),
		})
	}
	return &dto.TransferResponse{
		ID:                   t.ID,
		OrganizationID:       t.OrganizationID,
		FromLocationID:       t.FromLocationID,
		ToLocationID:         t.ToLocationID,
		Status:               t.Status.String(),
		Notes:                t.Notes,
		Items:                items,
		TotalTransitVariance: t.TotalTransitVariance(),
		CreatedBy:            t.CreatedBy,
		CreatedAt:            t.CreatedAt,
		ApprovedBy:           t.ApprovedBy,
		ApprovedAt:           t.ApprovedAt,
		ReceivedBy:           t.ReceivedBy,
		CompletedDate:        t.CompletedDate,
		CancelledBy:          t.CancelledBy,
		CancelledAt:          t.CancelledAt,
		CancelReason:         t.CancelReason,
		UpdatedAt:            t.UpdatedAt,
	}
}

func toReconciliationResponse(t *transfer.StockTransfer, r transfer.Report) *dto.ReconciliationResponse {
	out := &dto.ReconciliationResponse{
		Transfer:  *toTransferResponse(t),
		Succeeded: make([]dto.ReconciledItemResponse, 0, len(r.Succeeded)),
		Failures:  make([]dto.AdjustmentFailureResponse, 0, len(r.Failures)),
	}
	for _, s := range r.Succeeded {
		out.Succeeded = append(out.Succeeded, dto.ReconciledItemResponse{
			InventoryItemID:  s.ItemID,
			Transferred:      s.Transferred,
			Received:         s.Received,
			TransitVariance:  s.TransitVariance,
			SourceStock:      s.SourceStock,
			DestinationStock: s.DestinationStock,
		})
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, dto.AdjustmentFailureResponse{
			InventoryItemID: f.ItemID,
			Side:            string(f.Side),
			LocationID:      f.LocationID,
			Delta:           f.Delta,
			Error:           f.Err.Error(),
		})
	}
	return out
}

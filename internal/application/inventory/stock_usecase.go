package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/inventory"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

// StockUseCase consulta de stock por sede, niveles mín/máx y ajustes manuales.
type StockUseCase struct {
	levelRepo    repository.LocationInventoryRepository
	locationRepo repository.LocationRepository
	store        transfer.InventoryStore
	log          zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	levelRepo repository.LocationInventoryRepository,
	locationRepo repository.LocationRepository,
	store transfer.InventoryStore,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{levelRepo: levelRepo, locationRepo: locationRepo, store: store, log: log}
}

// Get stock de un ítem en la sede.
func (uc *StockUseCase) Get(ctx context.Context, organizationID, locationID, itemID string) (*dto.StockLevelResponse, error) {
	if err := uc.checkLocation(ctx, organizationID, locationID); err != nil {
		return nil, err
	}
	row, err := uc.levelRepo.Get(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return toStockLevelResponse(row), nil
}

// List stock de la sede con paginación.
func (uc *StockUseCase) List(ctx context.Context, organizationID, locationID string, page dto.PageRequest) (*dto.StockLevelListResponse, error) {
	if err := uc.checkLocation(ctx, organizationID, locationID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	rows, err := uc.levelRepo.ListByLocation(ctx, locationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockLevelResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, *toStockLevelResponse(r))
	}
	return &dto.StockLevelListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// SetLevels fija mínimo y máximo. Un máximo cero significa "sin máximo".
func (uc *StockUseCase) SetLevels(ctx context.Context, organizationID, locationID, itemID string, in dto.SetStockLevelsRequest) (*dto.StockLevelResponse, error) {
	if err := uc.checkLocation(ctx, organizationID, locationID); err != nil {
		return nil, err
	}
	if itemID == "" || in.MinStockLevel.IsNegative() || in.MaxStockLevel.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxStockLevel.IsPositive() && in.MaxStockLevel.LessThan(in.MinStockLevel) {
		return nil, fmt.Errorf("%w: max_stock_level menor que min_stock_level", domain.ErrInvalidInput)
	}
	if err := uc.levelRepo.SetLevels(ctx, locationID, itemID, in.MinStockLevel, in.MaxStockLevel); err != nil {
		return nil, err
	}
	return uc.Get(ctx, organizationID, locationID, itemID)
}

// Adjust aplica un ajuste manual (sin traslado). El stock resultante se recorta en cero.
func (uc *StockUseCase) Adjust(ctx context.Context, organizationID, actorID, locationID, itemID string, in dto.AdjustStockRequest) (*dto.StockLevelResponse, error) {
	if err := uc.checkLocation(ctx, organizationID, locationID); err != nil {
		return nil, err
	}
	if itemID == "" || in.Delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	before, err := uc.store.GetStock(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	after, err := uc.store.Adjust(ctx, entity.AdjustmentKey{LocationID: locationID, ItemID: itemID}, in.Delta)
	if err != nil {
		return nil, err
	}
	_, clamped := inventory.ApplyDelta(before, in.Delta)
	uc.log.Info().
		Str("location_id", locationID).
		Str("item_id", itemID).
		Str("actor_id", actorID).
		Str("delta", in.Delta.String()).
		Str("stock", after.String()).
		Bool("clamped", clamped).
		Str("reason", in.Reason).
		Msg("ajuste manual de stock")
	return uc.Get(ctx, organizationID, locationID, itemID)
}

func (uc *StockUseCase) checkLocation(ctx context.Context, organizationID, locationID string) error {
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}
	if loc.OrganizationID != organizationID {
		return domain.ErrForbidden
	}
	return nil
}

func toStockLevelResponse(r *entity.LocationInventory) *dto.StockLevelResponse {
	return &dto.StockLevelResponse{
		LocationID:    r.LocationID,
		ItemID:        r.ItemID,
		CurrentStock:  r.CurrentStock,
		MinStockLevel: r.MinStockLevel,
		MaxStockLevel: r.MaxStockLevel,
		BelowMinimum:  inventory.BelowMinimum(r.CurrentStock, r.MinStockLevel),
		UpdatedAt:     r.UpdatedAt,
	}
}

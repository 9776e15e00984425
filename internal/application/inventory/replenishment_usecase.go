package inventory

import (
	"context"
	"sort"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/inventory"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de una sede.
type ReplenishmentUseCase struct {
	levelRepo    repository.LocationInventoryRepository
	locationRepo repository.LocationRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	levelRepo repository.LocationInventoryRepository,
	locationRepo repository.LocationRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		levelRepo:    levelRepo,
		locationRepo: locationRepo,
	}
}

// GenerateReplenishmentList devuelve los ítems con stock bajo su mínimo y la cantidad
// sugerida para volver al máximo. Ordena por déficit y asigna prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(
	ctx context.Context,
	organizationID, locationID string,
) ([]dto.ReplenishmentSuggestionDTO, error) {
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	if loc.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}

	rows, err := uc.levelRepo.ListBelowMinimum(ctx, locationID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:            row.ItemID,
			CurrentStock:      row.CurrentStock,
			MinStockLevel:     row.MinStockLevel,
			MaxStockLevel:     row.MaxStockLevel,
			Deficit:           row.MinStockLevel.Sub(row.CurrentStock),
			SuggestedOrderQty: inventory.SuggestedOrderQty(row.CurrentStock, row.MinStockLevel, row.MaxStockLevel),
		})
	}

	// Mayor déficit primero; a igual déficit, mayor cantidad sugerida.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		if !a.SuggestedOrderQty.Equal(b.SuggestedOrderQty) {
			return a.SuggestedOrderQty.GreaterThan(b.SuggestedOrderQty)
		}
		return a.ItemID < b.ItemID
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

package inventory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

func TestReplenishment_PrioridadPorDeficit(t *testing.T) {
	b := memory.NewBackend()
	ctx := context.Background()
	require.NoError(t, b.Locations.Create(ctx, &entity.Location{ID: "br", OrganizationID: "org", Code: "BR", IsActive: true}))

	b.Inventory.Seed("br", "oil", q(2))
	b.Inventory.Seed("br", "chain", q(9))
	b.Inventory.Seed("br", "bulb", q(30))
	require.NoError(t, b.Inventory.SetLevels(ctx, "br", "oil", q(10), q(25)))
	require.NoError(t, b.Inventory.SetLevels(ctx, "br", "chain", q(10), q(0)))
	require.NoError(t, b.Inventory.SetLevels(ctx, "br", "bulb", q(10), q(40)))

	uc := NewReplenishmentUseCase(b.Inventory, b.Locations)
	list, err := uc.GenerateReplenishmentList(ctx, "org", "br")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "oil", list[0].ItemID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(q(23)))
	assert.Equal(t, "chain", list[1].ItemID)
	assert.True(t, list[1].SuggestedOrderQty.Equal(q(11)), "sin máximo el objetivo es 2x mínimo")

	_, err = uc.GenerateReplenishmentList(ctx, "otra", "br")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStockUseCase_NivelesYAjustes(t *testing.T) {
	b := memory.NewBackend()
	ctx := context.Background()
	require.NoError(t, b.Locations.Create(ctx, &entity.Location{ID: "br", OrganizationID: "org", Code: "BR", IsActive: true}))
	uc := NewStockUseCase(b.Inventory, b.Locations, b.Inventory, zerolog.Nop())

	_, err := uc.SetLevels(ctx, "org", "br", "oil", dto.SetStockLevelsRequest{MinStockLevel: q(10), MaxStockLevel: q(5)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	lvl, err := uc.SetLevels(ctx, "org", "br", "oil", dto.SetStockLevelsRequest{MinStockLevel: q(10), MaxStockLevel: q(20)})
	require.NoError(t, err)
	assert.True(t, lvl.BelowMinimum)

	lvl, err = uc.Adjust(ctx, "org", "u", "br", "oil", dto.AdjustStockRequest{Delta: q(12), Reason: "conteo"})
	require.NoError(t, err)
	assert.True(t, lvl.CurrentStock.Equal(q(12)))
	assert.False(t, lvl.BelowMinimum)

	lvl, err = uc.Adjust(ctx, "org", "u", "br", "oil", dto.AdjustStockRequest{Delta: q(-50), Reason: "merma"})
	require.NoError(t, err)
	assert.True(t, lvl.CurrentStock.IsZero(), "el stock nunca queda negativo")

	list, err := uc.List(ctx, "org", "br", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.Get(ctx, "org", "br", "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

func ptr[T any](v T) *T { return &v }

func TestLocationUseCase_CodigoUnicoPorOrganizacion(t *testing.T) {
	uc := NewLocationUseCase(memory.NewLocationRepository(), LocationConfig{}, zerolog.Nop())
	ctx := context.Background()

	_, err := uc.Create(ctx, "org-1", dto.CreateLocationRequest{Code: "BLR", Name: "Bangalore"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "org-1", dto.CreateLocationRequest{Code: " BLR ", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, "org-2", dto.CreateLocationRequest{Code: "BLR", Name: "Bangalore"})
	assert.NoError(t, err)
}

func TestLocationUseCase_SedePrincipalUnica(t *testing.T) {
	ctx := context.Background()

	// Sin la regla activa se permiten varias sedes principales.
	free := NewLocationUseCase(memory.NewLocationRepository(), LocationConfig{}, zerolog.Nop())
	_, err := free.Create(ctx, "org", dto.CreateLocationRequest{Code: "A", Name: "A", IsHeadquarters: true})
	require.NoError(t, err)
	_, err = free.Create(ctx, "org", dto.CreateLocationRequest{Code: "B", Name: "B", IsHeadquarters: true})
	require.NoError(t, err)

	strict := NewLocationUseCase(memory.NewLocationRepository(), LocationConfig{SingleHeadquarters: true}, zerolog.Nop())
	hq, err := strict.Create(ctx, "org", dto.CreateLocationRequest{Code: "A", Name: "A", IsHeadquarters: true})
	require.NoError(t, err)
	_, err = strict.Create(ctx, "org", dto.CreateLocationRequest{Code: "B", Name: "B", IsHeadquarters: true})
	assert.ErrorIs(t, err, domain.ErrHeadquartersTaken)

	branch, err := strict.Create(ctx, "org", dto.CreateLocationRequest{Code: "C", Name: "C"})
	require.NoError(t, err)
	_, err = strict.Update(ctx, "org", branch.ID, dto.UpdateLocationRequest{IsHeadquarters: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrHeadquartersTaken)

	// Reafirmar la misma sede principal no choca consigo misma.
	_, err = strict.Update(ctx, "org", hq.ID, dto.UpdateLocationRequest{IsHeadquarters: ptr(true), Name: ptr("Central")})
	assert.NoError(t, err)
}

func TestLocationUseCase_ActualizarYDesactivar(t *testing.T) {
	uc := NewLocationUseCase(memory.NewLocationRepository(), LocationConfig{}, zerolog.Nop())
	ctx := context.Background()
	a, err := uc.Create(ctx, "org", dto.CreateLocationRequest{Code: "A", Name: "A"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "org", dto.CreateLocationRequest{Code: "B", Name: "B"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, "org", a.ID, dto.UpdateLocationRequest{Code: ptr("B")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Get(ctx, "otra", a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, uc.Deactivate(ctx, "org", a.ID))
	got, err := uc.Get(ctx, "org", a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := uc.List(ctx, "org", dto.LocationListRequest{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "B", active.Items[0].Code)
	assert.Equal(t, 20, active.Page.Limit)

	assert.ErrorIs(t, uc.Deactivate(ctx, "org", "nada"), domain.ErrNotFound)
}

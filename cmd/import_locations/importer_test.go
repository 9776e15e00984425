package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/bizsuite/ledger-api/internal/application/usecase"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

func newImporter(charset string) (*importer, *memory.LocationRepository) {
	repo := memory.NewLocationRepository()
	uc := usecase.NewLocationUseCase(repo, usecase.LocationConfig{SingleHeadquarters: true}, zerolog.Nop())
	return &importer{repo: repo, uc: uc, charset: charset}, repo
}

func TestImporter_CreaYActualiza(t *testing.T) {
	imp, repo := newImporter("utf-8")
	ctx := context.Background()

	csv := "code,name,address,is_headquarters\n" +
		"HQ,Casa matriz,Av. Principal 1,true\n" +
		"BR1,Sucursal Norte,,false\n"
	res, err := imp.Run(ctx, "org-1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Rejected)

	csv = "code,name\nBR1,Sucursal Norte Renovada\n"
	res, err = imp.Run(ctx, "org-1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)

	loc, err := repo.GetByCode(ctx, "org-1", "BR1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Sucursal Norte Renovada", loc.Name)
}

func TestImporter_FilasInvalidasNoDetienenLaCarga(t *testing.T) {
	imp, _ := newImporter("utf-8")
	csv := "code,name,is_headquarters\n" +
		"HQ,Casa matriz,true\n" +
		",Sin código,false\n" +
		"HQ2,Segunda principal,true\n" +
		"BR1,Sucursal,quizás\n" +
		"BR2,Sucursal Sur,false\n"
	res, err := imp.Run(context.Background(), "org-1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Rejected, 3)

	assert.Equal(t, 3, res.Rejected[0].Row)
	assert.ErrorIs(t, res.Rejected[0].Err, domain.ErrInvalidInput)
	assert.Equal(t, "HQ2", res.Rejected[1].Code)
	assert.ErrorIs(t, res.Rejected[1].Err, domain.ErrHeadquartersTaken)
	assert.Equal(t, 5, res.Rejected[2].Row)
}

func TestImporter_Windows1252PorDefecto(t *testing.T) {
	imp, repo := newImporter("")
	enc, err := charmap.Windows1252.NewEncoder().String("code,name\nMED,Medellín Café\n")
	require.NoError(t, err)

	res, err := imp.Run(context.Background(), "org-1", bytes.NewReader([]byte(enc)))
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	loc, err := repo.GetByCode(context.Background(), "org-1", "MED")
	require.NoError(t, err)
	assert.Equal(t, "Medellín Café", loc.Name)
}

func TestImporter_CabeceraSinColumnasRequeridas(t *testing.T) {
	imp, _ := newImporter("utf-8")
	_, err := imp.Run(context.Background(), "org-1", strings.NewReader("codigo,nombre\nA,B\n"))
	require.Error(t, err)
}

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

func completedTransfer(t *testing.T, b *memory.Backend, id, from, to string, at time.Time, items ...transfer.Item) {
	t.Helper()
	tr, err := transfer.New(id, "org", from, to, "u", items, at)
	require.NoError(t, err)
	require.NoError(t, tr.Submit(at))
	require.NoError(t, tr.Approve("m", at))
	require.NoError(t, tr.MarkCompleted("r", at))
	require.NoError(t, b.Transfers.Create(context.Background(), tr))
}

func it(id string, transferred, received int64) transfer.Item {
	return transfer.Item{
		InventoryItemID:     id,
		RequestedQuantity:   decimal.NewFromInt(transferred),
		TransferredQuantity: decimal.NewFromInt(transferred),
		ReceivedQuantity:    decimal.NewFromInt(received),
	}
}

func TestGetTransitReport(t *testing.T) {
	b := memory.NewBackend()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	completedTransfer(t, b, "t1", "hq", "br", at, it("glass", 100, 90), it("bolt", 50, 50))
	completedTransfer(t, b, "t2", "hq", "br", at, it("glass", 20, 18), it("paint", 10, 9))
	completedTransfer(t, b, "t3", "br", "hq", at, it("paint", 5, 4))
	completedTransfer(t, b, "fuera", "hq", "br", at.AddDate(0, 2, 0), it("glass", 10, 0))

	uc := NewAnalyticsUseCase(b)
	uc.now = func() time.Time { return at }

	out, err := uc.GetTransitReport(context.Background(), "org", dto.TransitReportRequest{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	require.NoError(t, err)

	assert.True(t, out.TotalVariance.Equal(decimal.NewFromInt(14)))
	require.Len(t, out.Routes, 2)
	assert.Equal(t, "hq", out.Routes[0].FromLocationID)
	assert.Equal(t, 2, out.Routes[0].TransferCount)
	assert.True(t, out.Routes[0].Variance.Equal(decimal.NewFromInt(13)))

	require.Len(t, out.ItemRanking, 3)
	assert.Equal(t, "glass", out.ItemRanking[0].ItemID)
	assert.True(t, out.ItemRanking[0].IsTopPareto)
	assert.Equal(t, "paint", out.ItemRanking[1].ItemID)
	assert.False(t, out.ItemRanking[1].IsTopPareto, "el acumulado supera el 80%")
	assert.Equal(t, "bolt", out.ItemRanking[2].ItemID)
	assert.False(t, out.ItemRanking[2].IsTopPareto)
	assert.Len(t, out.ParetoItems, 1)
}

func TestGetTransitReport_PeriodoInvalido(t *testing.T) {
	uc := NewAnalyticsUseCase(memory.NewBackend())
	_, err := uc.GetTransitReport(context.Background(), "org", dto.TransitReportRequest{StartDate: "2026-03-10", EndDate: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetTransitReport(context.Background(), "org", dto.TransitReportRequest{StartDate: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetTransitReport_SinDatos(t *testing.T) {
	uc := NewAnalyticsUseCase(memory.NewBackend())
	out, err := uc.GetTransitReport(context.Background(), "org", dto.TransitReportRequest{})
	require.NoError(t, err)
	assert.True(t, out.TotalVariance.IsZero())
	assert.Empty(t, out.Routes)
	assert.Empty(t, out.ParetoItems)
}

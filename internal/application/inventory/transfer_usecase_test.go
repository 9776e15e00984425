package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

func q(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func qp(v int64) *decimal.Decimal { d := q(v); return &d }

type fixture struct {
	backend *memory.Backend
	uc      *TransferUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := memory.NewBackend()
	ctx := context.Background()
	for _, l := range []entity.Location{
		{ID: "hq", OrganizationID: "org", Code: "HQ", IsActive: true, IsHeadquarters: true},
		{ID: "br", OrganizationID: "org", Code: "BR", IsActive: true},
		{ID: "old", OrganizationID: "org", Code: "OLD", IsActive: false},
		{ID: "foreign", OrganizationID: "otra", Code: "X", IsActive: true},
	} {
		l := l
		require.NoError(t, b.Locations.Create(ctx, &l))
	}
	uc := NewTransferUseCase(b.Transfers, b.Locations, b.Inventory, nil, zerolog.Nop()).WithLedger(b.Inventory)
	uc.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	return &fixture{backend: b, uc: uc}
}

func (f *fixture) approvedTransfer(t *testing.T, items ...dto.TransferItemRequest) string {
	t.Helper()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "org", "creator", dto.CreateTransferRequest{
		FromLocationID: "hq", ToLocationID: "br", Submit: true, Items: items,
	})
	require.NoError(t, err)
	require.Equal(t, "pending", created.Status)
	_, err = f.uc.Approve(ctx, "org", "manager", created.ID)
	require.NoError(t, err)
	return created.ID
}

func (f *fixture) stock(t *testing.T, loc, item string) decimal.Decimal {
	t.Helper()
	s, err := f.backend.Inventory.GetStock(context.Background(), loc, item)
	require.NoError(t, err)
	return s
}

func TestTransferUseCase_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	f.backend.Inventory.Seed("hq", "helmet", q(50))
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "helmet", RequestedQuantity: q(10)})

	out, err := f.uc.Complete(context.Background(), "org", "receiver", id, dto.CompleteTransferRequest{
		Items: []dto.ItemQuantitiesRequest{{InventoryItemID: "helmet", TransferredQuantity: q(10), ReceivedQuantity: q(8)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Transfer.Status)
	assert.Equal(t, "receiver", out.Transfer.ReceivedBy)
	assert.True(t, out.Transfer.TotalTransitVariance.Equal(q(2)))
	assert.Empty(t, out.Failures)

	assert.True(t, f.stock(t, "hq", "helmet").Equal(q(40)))
	assert.True(t, f.stock(t, "br", "helmet").Equal(q(8)))

	stored, err := f.uc.Get(context.Background(), "org", id)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
	require.NotNil(t, stored.CompletedDate)
	assert.Equal(t, "manager", stored.ApprovedBy)

	// Completar de nuevo es una transición inválida y no toca inventario.
	_, err = f.uc.Complete(context.Background(), "org", "receiver", id, dto.CompleteTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.stock(t, "hq", "helmet").Equal(q(40)))
}

func TestTransferUseCase_CantidadesPorDefecto(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "org", "u", dto.CreateTransferRequest{
		FromLocationID: "hq", ToLocationID: "br",
		Items: []dto.TransferItemRequest{
			{InventoryItemID: "a", RequestedQuantity: q(5)},
			{InventoryItemID: "b", RequestedQuantity: q(5), TransferredQuantity: qp(4)},
			{InventoryItemID: "c", RequestedQuantity: q(5), TransferredQuantity: qp(4), ReceivedQuantity: qp(3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", out.Status)
	assert.True(t, out.Items[0].ReceivedQuantity.Equal(q(5)))
	assert.True(t, out.Items[1].ReceivedQuantity.Equal(q(4)))
	assert.True(t, out.Items[2].TransitVariance.Equal(q(1)))
}

func TestTransferUseCase_ValidaSedes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []dto.TransferItemRequest{{InventoryItemID: "a", RequestedQuantity: q(1)}}

	_, err := f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "hq", ToLocationID: "hq", Items: items})
	assert.ErrorIs(t, err, domain.ErrSameLocation)
	_, err = f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "hq", ToLocationID: "old", Items: items})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "hq", ToLocationID: "foreign", Items: items})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "hq", ToLocationID: "nada", Items: items})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failOnce falla el primer ajuste de entrada y luego delega.
type failOnce struct {
	*memory.InventoryStore
	failed bool
}

func (s *failOnce) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	if key.Direction == entity.DirectionIn && !s.failed {
		s.failed = true
		return decimal.Zero, errors.New("timeout")
	}
	return s.InventoryStore.Adjust(ctx, key, delta)
}

func TestTransferUseCase_ReintentoTrasFallaParcial(t *testing.T) {
	f := newFixture(t)
	f.backend.Inventory.Seed("hq", "tyre", q(20))
	f.uc.store = &failOnce{InventoryStore: f.backend.Inventory}
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "tyre", RequestedQuantity: q(6)})

	out, err := f.uc.Complete(context.Background(), "org", "receiver", id, dto.CompleteTransferRequest{
		Items: []dto.ItemQuantitiesRequest{{InventoryItemID: "tyre", TransferredQuantity: q(6), ReceivedQuantity: q(5)}},
	})
	var partial *transfer.PartialFailureError
	require.True(t, errors.As(err, &partial))
	require.NotNil(t, out)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "destination", out.Failures[0].Side)
	assert.Equal(t, "approved", out.Transfer.Status)

	stored, err := f.uc.Get(context.Background(), "org", id)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].ReceivedQuantity.Equal(q(5)), "las cantidades registradas se guardan")

	out, err = f.uc.Complete(context.Background(), "org", "receiver", id, dto.CompleteTransferRequest{})
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Transfer.Status)
	assert.True(t, f.stock(t, "hq", "tyre").Equal(q(14)), "el origen se descontó una sola vez")
	assert.True(t, f.stock(t, "br", "tyre").Equal(q(5)))
}

func TestTransferUseCase_ReintentoConOtrasCantidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.Inventory.Seed("hq", "tyre", q(20))
	f.uc.store = &failOnce{InventoryStore: f.backend.Inventory}
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "tyre", RequestedQuantity: q(6)})

	_, err := f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{
		Items: []dto.ItemQuantitiesRequest{{InventoryItemID: "tyre", TransferredQuantity: q(6), ReceivedQuantity: q(5)}},
	})
	var partial *transfer.PartialFailureError
	require.True(t, errors.As(err, &partial))

	_, err = f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{
		Items: []dto.ItemQuantitiesRequest{{InventoryItemID: "tyre", TransferredQuantity: q(10), ReceivedQuantity: q(5)}},
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	stored, err := f.uc.Get(ctx, "org", id)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.True(t, stored.Items[0].TransferredQuantity.Equal(q(6)), "las cantidades no cambian")

	out, err := f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{
		Items: []dto.ItemQuantitiesRequest{{InventoryItemID: "tyre", TransferredQuantity: q(6), ReceivedQuantity: q(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Transfer.Status)
	assert.True(t, out.Transfer.TotalTransitVariance.Equal(q(1)))
	assert.True(t, f.stock(t, "hq", "tyre").Equal(q(14)))
	assert.True(t, f.stock(t, "br", "tyre").Equal(q(5)))
}

func TestTransferUseCase_CancelarConAjustesAplicados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.Inventory.Seed("hq", "tyre", q(20))
	f.uc.store = &failOnce{InventoryStore: f.backend.Inventory}
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "tyre", RequestedQuantity: q(6)})

	_, err := f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{})
	require.Error(t, err)

	_, err = f.uc.Cancel(ctx, "org", "u", id, "error")
	require.ErrorIs(t, err, domain.ErrConflict)
	stored, err := f.uc.Get(ctx, "org", id)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.True(t, f.stock(t, "hq", "tyre").Equal(q(14)))
}

func TestTransferUseCase_CancelacionConCopiaVieja(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.Inventory.Seed("hq", "tyre", q(20))
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "tyre", RequestedQuantity: q(6)})

	stale, err := f.backend.Transfers.GetByID(ctx, id)
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{})
	require.NoError(t, err)

	require.NoError(t, stale.Cancel("u", "tarde", f.uc.now()))
	err = f.backend.Transfers.Update(ctx, stale, transfer.StatusApproved)
	require.ErrorIs(t, err, domain.ErrConflict)

	stored, err := f.uc.Get(ctx, "org", id)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
	assert.Empty(t, stored.CancelledBy)
}

func TestTransferUseCase_CancelarYListar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []dto.TransferItemRequest{{InventoryItemID: "a", RequestedQuantity: q(1)}}

	a, err := f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "hq", ToLocationID: "br", Items: items})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "org", "u", dto.CreateTransferRequest{FromLocationID: "br", ToLocationID: "hq", Items: items})
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(ctx, "org", "u2", a.ID, "duplicado")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "duplicado", cancelled.CancelReason)

	_, err = f.uc.Submit(ctx, "org", "u", a.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Approve(ctx, "otra", "m", a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	drafts, err := f.uc.List(ctx, "org", dto.TransferListRequest{Status: "draft"})
	require.NoError(t, err)
	assert.Len(t, drafts.Items, 1)
	all, err := f.uc.List(ctx, "org", dto.TransferListRequest{LocationID: "hq"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = f.uc.List(ctx, "org", dto.TransferListRequest{Status: "shipped"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransferUseCase_Ledger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bare := NewTransferUseCase(f.backend.Transfers, f.backend.Locations, f.backend.Inventory, nil, zerolog.Nop())
	_, err := bare.Ledger(ctx, "org", "x")
	require.Error(t, err, "sin ledger configurado")

	f.backend.Inventory.Seed("hq", "helmet", q(3))
	id := f.approvedTransfer(t, dto.TransferItemRequest{InventoryItemID: "helmet", RequestedQuantity: q(5)})

	_, err = f.uc.Complete(ctx, "org", "receiver", id, dto.CompleteTransferRequest{})
	require.NoError(t, err)

	out, err := f.uc.Ledger(ctx, "org", id)
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "in", out.Entries[0].Direction)
	assert.True(t, out.Entries[0].ResultingStock.Equal(q(5)))
	assert.Equal(t, "out", out.Entries[1].Direction)
	assert.True(t, out.Entries[1].Clamped)
	assert.True(t, out.Entries[1].ResultingStock.IsZero())

	_, err = f.uc.Ledger(ctx, "otra", id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

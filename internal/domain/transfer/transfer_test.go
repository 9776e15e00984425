package transfer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func newItem(id string, transferred, received int64) transfer.Item {
	return transfer.Item{
		InventoryItemID:     id,
		RequestedQuantity:   qty(transferred),
		TransferredQuantity: qty(transferred),
		ReceivedQuantity:    qty(received),
	}
}

func newTransfer(t *testing.T, items ...transfer.Item) *transfer.StockTransfer {
	t.Helper()
	tr, err := transfer.New("tr-1", "org-1", "loc-a", "loc-b", "user-1", items, t0)
	require.NoError(t, err)
	return tr
}

func approved(t *testing.T, items ...transfer.Item) *transfer.StockTransfer {
	t.Helper()
	tr := newTransfer(t, items...)
	require.NoError(t, tr.Submit(t0))
	require.NoError(t, tr.Approve("approver-1", t0))
	return tr
}

func TestNew_Validaciones(t *testing.T) {
	_, err := transfer.New("tr", "org", "loc-a", "loc-a", "u", []transfer.Item{newItem("i", 1, 1)}, t0)
	assert.ErrorIs(t, err, domain.ErrSameLocation)

	_, err = transfer.New("tr", "org", "loc-a", "loc-b", "u", nil, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = transfer.New("tr", "org", "loc-a", "loc-b", "u", []transfer.Item{newItem("i", -1, 0)}, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = transfer.New("tr", "org", "loc-a", "loc-b", "u", []transfer.Item{newItem("i", 1, 1), newItem("i", 2, 2)}, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ítems repetidos")

	tr, err := transfer.New("tr", "org", "loc-a", "loc-b", "u", []transfer.Item{newItem("i", 1, 1)}, t0)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusDraft, tr.Status)
}

func TestCicloDeVida_RegistraActores(t *testing.T) {
	tr := newTransfer(t, newItem("i", 5, 5))
	require.NoError(t, tr.Submit(t0))
	assert.Equal(t, transfer.StatusPending, tr.Status)

	err := tr.Approve("", t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "aprobar exige aprobador")

	later := t0.Add(time.Hour)
	require.NoError(t, tr.Approve("approver-9", later))
	assert.Equal(t, transfer.StatusApproved, tr.Status)
	assert.Equal(t, "approver-9", tr.ApprovedBy)
	require.NotNil(t, tr.ApprovedAt)
	assert.Equal(t, later, *tr.ApprovedAt)
}

func TestCicloDeVida_NoRetrocede(t *testing.T) {
	tr := approved(t, newItem("i", 5, 5))
	assert.ErrorIs(t, tr.Submit(t0), domain.ErrInvalidTransition)

	require.NoError(t, tr.MarkCompleted("receiver", t0))
	assert.ErrorIs(t, tr.Cancel("u", "tarde", t0), domain.ErrInvalidTransition, "completed es terminal")
	assert.ErrorIs(t, tr.Approve("x", t0), domain.ErrInvalidTransition)
}

func TestCancel_DesdeEstadosNoTerminales(t *testing.T) {
	tr := newTransfer(t, newItem("i", 1, 1))
	require.NoError(t, tr.Cancel("user-2", "error de captura", t0))
	assert.Equal(t, transfer.StatusCancelled, tr.Status)
	assert.Equal(t, "user-2", tr.CancelledBy)
	assert.Equal(t, "error de captura", tr.CancelReason)
	assert.ErrorIs(t, tr.Cancel("user-2", "otra vez", t0), domain.ErrInvalidTransition)

	tr = approved(t, newItem("i", 1, 1))
	require.NoError(t, tr.Cancel("user-2", "", t0))
}

func TestRecordQuantities(t *testing.T) {
	tr := approved(t, newItem("i", 10, 10))
	require.NoError(t, tr.RecordQuantities("i", qty(10), qty(8), t0))
	assert.True(t, tr.Items[0].TransitVariance().Equal(qty(2)))
	assert.True(t, tr.TotalTransitVariance().Equal(qty(2)))

	err := tr.RecordQuantities("otro", qty(1), qty(1), t0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = tr.RecordQuantities("i", qty(1), qty(-1), t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, tr.Items[0].ReceivedQuantity.Equal(qty(8)), "un valor inválido no modifica el ítem")
}

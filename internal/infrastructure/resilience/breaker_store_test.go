package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
)

type brokenStore struct {
	*memory.InventoryStore
	calls int
}

func (b *brokenStore) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	b.calls++
	return decimal.Zero, errors.New("timeout de conexión")
}

type stateRecorder struct{ states []int }

func (r *stateRecorder) SetBreakerState(name string, state int) { r.states = append(r.states, state) }

func TestBreakerStore_AbreTrasFallasConsecutivas(t *testing.T) {
	inner := &brokenStore{InventoryStore: memory.NewInventoryStore()}
	rec := &stateRecorder{}
	store := NewBreakerStore(inner, BreakerConfig{FailureThreshold: 3, Timeout: time.Minute}, zerolog.Nop(), rec)

	key := entity.AdjustmentKey{TransferID: "t", LocationID: "l", ItemID: "i", Direction: entity.DirectionOut}
	for i := 0; i < 3; i++ {
		_, err := store.Adjust(context.Background(), key, decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrStoreUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.Adjust(context.Background(), key, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 3, inner.calls, "con el breaker abierto no se llama al almacén")
	assert.Equal(t, []int{int(gobreaker.StateClosed), int(gobreaker.StateOpen)}, rec.states)
}

func TestBreakerStore_ErroresDelLlamadorNoAbren(t *testing.T) {
	store := NewBreakerStore(memory.NewInventoryStore(), BreakerConfig{FailureThreshold: 1}, zerolog.Nop(), nil)
	for i := 0; i < 3; i++ {
		_, err := store.Adjust(context.Background(), entity.AdjustmentKey{ItemID: "i"}, decimal.NewFromInt(1))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := store.Adjust(ctx, entity.AdjustmentKey{LocationID: "l", ItemID: "i"}, decimal.NewFromInt(1))
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, domain.ErrStoreUnavailable))
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_DelegaSinFallas(t *testing.T) {
	inner := memory.NewInventoryStore()
	inner.Seed("l", "i", decimal.NewFromInt(10))
	store := NewBreakerStore(inner, BreakerConfig{}, zerolog.Nop(), nil)

	got, err := store.Adjust(context.Background(), entity.AdjustmentKey{LocationID: "l", ItemID: "i"}, decimal.NewFromInt(-4))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(6)))

	stock, err := store.GetStock(context.Background(), "l", "i")
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

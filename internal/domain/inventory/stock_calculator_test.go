package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bizsuite/ledger-api/internal/domain/inventory"
)

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name        string
		current     int64
		delta       int64
		want        int64
		wantClamped bool
	}{
		{"entrada", 5, 3, 8, false},
		{"salida parcial", 10, -4, 6, false},
		{"salida exacta", 10, -10, 0, false},
		{"salida mayor al stock", 3, -10, 0, true},
		{"stock vacío", 0, -1, 0, true},
		{"delta cero", 7, 0, 7, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, clamped := inventory.ApplyDelta(decimal.NewFromInt(tc.current), decimal.NewFromInt(tc.delta))
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "obtenido %s", got)
			assert.Equal(t, tc.wantClamped, clamped)
		})
	}
}

func TestBelowMinimum(t *testing.T) {
	assert.True(t, inventory.BelowMinimum(decimal.NewFromInt(4), decimal.NewFromInt(5)))
	assert.False(t, inventory.BelowMinimum(decimal.NewFromInt(5), decimal.NewFromInt(5)))
	assert.False(t, inventory.BelowMinimum(decimal.Zero, decimal.Zero), "mínimo cero desactiva la regla")
}

func TestSuggestedOrderQty(t *testing.T) {
	assert.True(t, inventory.SuggestedOrderQty(decimal.NewFromInt(3), decimal.NewFromInt(5), decimal.NewFromInt(20)).Equal(decimal.NewFromInt(17)))
	assert.True(t, inventory.SuggestedOrderQty(decimal.NewFromInt(3), decimal.NewFromInt(5), decimal.Zero).Equal(decimal.NewFromInt(7)))
	assert.True(t, inventory.SuggestedOrderQty(decimal.NewFromInt(30), decimal.NewFromInt(5), decimal.NewFromInt(20)).IsZero())
}

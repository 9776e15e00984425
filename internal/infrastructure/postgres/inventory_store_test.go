package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/ledger-api/internal/domain/entity"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// recordingQuerier guarda las sentencias en orden y responde con stock fijo.
type recordingQuerier struct {
	sql          []string
	stock        decimal.Decimal
	ledgerExists bool
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = append(q.sql, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = append(q.sql, sql)
	return nil, pgx.ErrNoRows
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.sql = append(q.sql, sql)
	return rowFunc(func(dest ...any) error {
		switch {
		case strings.Contains(sql, "INSERT INTO transfer_ledger"):
			if q.ledgerExists {
				return pgx.ErrNoRows
			}
			*dest[0].(*string) = args[0].(string)
		case strings.Contains(sql, "FOR UPDATE"):
			*dest[0].(*decimal.Decimal) = q.stock
		}
		return nil
	})
}

func (q *recordingQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (q *recordingQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (q *recordingQuerier) indexOf(t *testing.T, fragment string) int {
	t.Helper()
	for i, s := range q.sql {
		if strings.Contains(s, fragment) {
			return i
		}
	}
	require.Failf(t, "sentencia no ejecutada", "%q", fragment)
	return -1
}

func TestAdjustStock_CreaFilaAntesDeBloquear(t *testing.T) {
	q := &recordingQuerier{stock: decimal.NewFromInt(3)}
	key := entity.AdjustmentKey{TransferID: "t1", LocationID: "br", ItemID: "helmet", Direction: entity.DirectionIn}

	got, err := adjustStock(context.Background(), q, key, decimal.NewFromInt(4), "l1")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))

	ledger := q.indexOf(t, "INSERT INTO transfer_ledger")
	ensure := q.indexOf(t, "ON CONFLICT (location_id, item_id) DO NOTHING")
	lock := q.indexOf(t, "FOR UPDATE")
	update := q.indexOf(t, "UPDATE location_inventory SET current_stock")
	result := q.indexOf(t, "UPDATE transfer_ledger")
	assert.Less(t, ledger, ensure)
	assert.Less(t, ensure, lock, "la fila debe existir para que FOR UPDATE serialice")
	assert.Less(t, lock, update)
	assert.Less(t, update, result)
}

func TestAdjustStock_ClaveRepetidaNoAplica(t *testing.T) {
	q := &recordingQuerier{stock: decimal.NewFromInt(9), ledgerExists: true}
	key := entity.AdjustmentKey{TransferID: "t1", LocationID: "hq", ItemID: "helmet", Direction: entity.DirectionOut}

	got, err := adjustStock(context.Background(), q, key, decimal.NewFromInt(-4), "l2")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(9)))
	for _, s := range q.sql {
		assert.NotContains(t, s, "UPDATE location_inventory")
	}
}

func TestAdjustStock_ManualSinLedger(t *testing.T) {
	q := &recordingQuerier{stock: decimal.NewFromInt(2)}
	key := entity.AdjustmentKey{LocationID: "hq", ItemID: "helmet"}

	got, err := adjustStock(context.Background(), q, key, decimal.NewFromInt(-5), "l3")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	for _, s := range q.sql {
		assert.NotContains(t, s, "transfer_ledger")
	}
	assert.Less(t, q.indexOf(t, "DO NOTHING"), q.indexOf(t, "FOR UPDATE"))
}

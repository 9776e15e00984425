package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/inventory"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var (
	_ transfer.InventoryStore                = (*InventoryStore)(nil)
	_ repository.LocationInventoryRepository = (*InventoryStore)(nil)
	_ repository.TransferLedgerRepository    = (*InventoryStore)(nil)
)

// InventoryStore stock por (sede, ítem) en location_inventory y ledger de ajustes en transfer_ledger.
type InventoryStore struct {
	pool *pgxpool.Pool
}

// NewInventoryStore construye el almacén sobre el pool.
func NewInventoryStore(pool *pgxpool.Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

func (s *InventoryStore) GetStock(ctx context.Context, locationID, itemID string) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := s.pool.QueryRow(ctx,
		`SELECT current_stock FROM location_inventory WHERE location_id = $1 AND item_id = $2`,
		locationID, itemID,
	).Scan(&stock)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get stock: %w", err)
	}
	return stock, nil
}

// Adjust aplica el delta en una transacción:
//  1. registra la clave en transfer_ledger (ON CONFLICT DO NOTHING); si ya existía, no aplica nada
//  2. asegura la fila de stock y la bloquea con FOR UPDATE
//  3. calcula max(0, actual + delta), guarda el stock y completa la fila del ledger
//
// Los ajustes manuales (TransferID vacío) no pasan por el ledger.
func (s *InventoryStore) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	if key.LocationID == "" || key.ItemID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var result decimal.Decimal
	err := withTx(ctx, s.pool, func(q Querier) error {
		var err error
		result, err = adjustStock(ctx, q, key, delta, uuid.New().String())
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result, nil
}

func adjustStock(ctx context.Context, q Querier, key entity.AdjustmentKey, delta decimal.Decimal, ledgerRowID string) (decimal.Decimal, error) {
	var ledgerID string
	if key.TransferID != "" {
		err := q.QueryRow(ctx, `
			INSERT INTO transfer_ledger (id, transfer_id, location_id, item_id, direction, delta, resulting_stock, clamped, applied_at)
			VALUES ($1, $2, $3, $4, $5, $6, 0, false, now())
			ON CONFLICT (transfer_id, item_id, direction) DO NOTHING
			RETURNING id`,
			ledgerRowID, key.TransferID, key.LocationID, key.ItemID, key.Direction, delta,
		).Scan(&ledgerID)
		if isNoRows(err) {
			return lockStock(ctx, q, key.LocationID, key.ItemID)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("insert ledger: %w", err)
		}
	}

	// Sin fila previa, FOR UPDATE no bloquea nada y dos ajustes concurrentes leerían cero.
	_, err := q.Exec(ctx, `
		INSERT INTO location_inventory (location_id, item_id, current_stock, min_stock_level, max_stock_level, updated_at)
		VALUES ($1, $2, 0, 0, 0, now())
		ON CONFLICT (location_id, item_id) DO NOTHING`,
		key.LocationID, key.ItemID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ensure stock row: %w", err)
	}

	current, err := lockStock(ctx, q, key.LocationID, key.ItemID)
	if err != nil {
		return decimal.Zero, err
	}
	next, clamped := inventory.ApplyDelta(current, delta)

	_, err = q.Exec(ctx,
		`UPDATE location_inventory SET current_stock = $3, updated_at = now() WHERE location_id = $1 AND item_id = $2`,
		key.LocationID, key.ItemID, next,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("update stock: %w", err)
	}

	if ledgerID != "" {
		_, err = q.Exec(ctx,
			`UPDATE transfer_ledger SET resulting_stock = $2, clamped = $3 WHERE id = $1`,
			ledgerID, next, clamped,
		)
		if err != nil {
			return decimal.Zero, fmt.Errorf("update ledger: %w", err)
		}
	}
	return next, nil
}

// lockStock lee el stock con FOR UPDATE; una fila inexistente cuenta como cero.
func lockStock(ctx context.Context, q Querier, locationID, itemID string) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT current_stock FROM location_inventory WHERE location_id = $1 AND item_id = $2 FOR UPDATE`,
		locationID, itemID,
	).Scan(&stock)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("lock stock: %w", err)
	}
	return stock, nil
}

// ListLedger ajustes aplicados de un traslado, ordenados por ítem y dirección.
func (s *InventoryStore) ListLedger(ctx context.Context, transferID string) ([]entity.TransferLedgerEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, transfer_id, location_id, item_id, direction, delta, resulting_stock, clamped, applied_at
		FROM transfer_ledger
		WHERE transfer_id = $1
		ORDER BY item_id, direction`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var out []entity.TransferLedgerEntry
	for rows.Next() {
		var e entity.TransferLedgerEntry
		if err := rows.Scan(&e.ID, &e.TransferID, &e.LocationID, &e.ItemID, &e.Direction,
			&e.Delta, &e.ResultingStock, &e.Clamped, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const inventoryColumns = `location_id, item_id, current_stock, min_stock_level, max_stock_level, updated_at`

// Get devuelve la fila de inventario o nil si no existe.
func (s *InventoryStore) Get(ctx context.Context, locationID, itemID string) (*entity.LocationInventory, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+inventoryColumns+` FROM location_inventory WHERE location_id = $1 AND item_id = $2`,
		locationID, itemID)
	inv, err := scanInventory(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

func (s *InventoryStore) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.LocationInventory, error) {
	lim, off := limitClause(limit, offset)
	return s.list(ctx, `
		SELECT `+inventoryColumns+`
		FROM location_inventory
		WHERE location_id = $1
		ORDER BY item_id
		LIMIT $2 OFFSET $3`, locationID, lim, off)
}

// SetLevels fija mínimo y máximo sin tocar el stock actual; crea la fila si no existe.
func (s *InventoryStore) SetLevels(ctx context.Context, locationID, itemID string, minLevel, maxLevel decimal.Decimal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO location_inventory (location_id, item_id, current_stock, min_stock_level, max_stock_level, updated_at)
		VALUES ($1, $2, 0, $3, $4, $5)
		ON CONFLICT (location_id, item_id) DO UPDATE
		SET min_stock_level = EXCLUDED.min_stock_level,
		    max_stock_level = EXCLUDED.max_stock_level,
		    updated_at      = EXCLUDED.updated_at`,
		locationID, itemID, minLevel, maxLevel, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set levels: %w", err)
	}
	return nil
}

func (s *InventoryStore) ListBelowMinimum(ctx context.Context, locationID string) ([]*entity.LocationInventory, error) {
	return s.list(ctx, `
		SELECT `+inventoryColumns+`
		FROM location_inventory
		WHERE location_id = $1
		  AND min_stock_level > 0
		  AND current_stock < min_stock_level
		ORDER BY (min_stock_level - current_stock) DESC, item_id`, locationID)
}

func (s *InventoryStore) list(ctx context.Context, query string, args ...any) ([]*entity.LocationInventory, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationInventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInventory(row pgx.Row) (*entity.LocationInventory, error) {
	var inv entity.LocationInventory
	if err := row.Scan(&inv.LocationID, &inv.ItemID, &inv.CurrentStock,
		&inv.MinStockLevel, &inv.MaxStockLevel, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

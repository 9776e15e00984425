package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain/entity"
)

// LocationInventoryRepository consultas de stock por sede e ítem y niveles mínimo/máximo.
// Los cambios de stock de traslados pasan por transfer.InventoryStore, no por este puerto.
type LocationInventoryRepository interface {
	Get(ctx context.Context, locationID, itemID string) (*entity.LocationInventory, error)
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.LocationInventory, error)
	SetLevels(ctx context.Context, locationID, itemID string, minLevel, maxLevel decimal.Decimal) error

	// ListBelowMinimum ítems de la sede con stock actual menor al mínimo configurado,
	// ordenados por mayor déficit primero.
	ListBelowMinimum(ctx context.Context, locationID string) ([]*entity.LocationInventory, error)
}

// TransferLedgerRepository lectura del ledger de ajustes aplicados por traslados.
type TransferLedgerRepository interface {
	ListLedger(ctx context.Context, transferID string) ([]entity.TransferLedgerEntry, error)
}

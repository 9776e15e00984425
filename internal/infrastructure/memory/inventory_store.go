// Package memory implementa el almacén de inventario en memoria (APP_STORE=memory y pruebas).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
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

type stockKey struct {
	locationID string
	itemID     string
}

type ledgerKey struct {
	transferID string
	itemID     string
	direction  string
}

// InventoryStore stock por (sede, ítem) y ledger de ajustes por traslado, protegidos por un mutex.
// Cada Adjust es una lectura-modificación-escritura atómica.
type InventoryStore struct {
	mu     sync.RWMutex
	stock  map[stockKey]*entity.LocationInventory
	ledger map[ledgerKey]entity.TransferLedgerEntry
	now    func() time.Time
}

// NewInventoryStore crea un almacén vacío.
func NewInventoryStore() *InventoryStore {
	return &InventoryStore{
		stock:  make(map[stockKey]*entity.LocationInventory),
		ledger: make(map[ledgerKey]entity.TransferLedgerEntry),
		now:    time.Now,
	}
}

// Seed fija el stock actual de un ítem en una sede (carga inicial).
func (s *InventoryStore) Seed(locationID, itemID string, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rowLocked(locationID, itemID)
	row.CurrentStock = quantity
	row.UpdatedAt = s.now()
}

func (s *InventoryStore) rowLocked(locationID, itemID string) *entity.LocationInventory {
	k := stockKey{locationID, itemID}
	row, ok := s.stock[k]
	if !ok {
		row = &entity.LocationInventory{
			LocationID:    locationID,
			ItemID:        itemID,
			CurrentStock:  decimal.Zero,
			MinStockLevel: decimal.Zero,
			MaxStockLevel: decimal.Zero,
		}
		s.stock[k] = row
	}
	return row
}

// GetStock devuelve el stock actual; cero si el par no existe.
func (s *InventoryStore) GetStock(ctx context.Context, locationID, itemID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row, ok := s.stock[stockKey{locationID, itemID}]; ok {
		return row.CurrentStock, nil
	}
	return decimal.Zero, nil
}

// Adjust aplica el delta recortando en cero. Si la clave ya figura en el ledger no se
// vuelve a aplicar y se devuelve el stock actual.
func (s *InventoryStore) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if key.LocationID == "" || key.ItemID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.rowLocked(key.LocationID, key.ItemID)
	lk := ledgerKey{key.TransferID, key.ItemID, key.Direction}
	if key.TransferID != "" {
		if _, applied := s.ledger[lk]; applied {
			return row.CurrentStock, nil
		}
	}

	next, clamped := inventory.ApplyDelta(row.CurrentStock, delta)
	now := s.now()
	row.CurrentStock = next
	row.UpdatedAt = now

	if key.TransferID != "" {
		s.ledger[lk] = entity.TransferLedgerEntry{
			ID:             uuid.New().String(),
			TransferID:     key.TransferID,
			LocationID:     key.LocationID,
			ItemID:         key.ItemID,
			Direction:      key.Direction,
			Delta:          delta,
			ResultingStock: next,
			Clamped:        clamped,
			AppliedAt:      now,
		}
	}
	return next, nil
}

// LedgerEntries ajustes aplicados de un traslado, ordenados por ítem y dirección.
func (s *InventoryStore) LedgerEntries(transferID string) []entity.TransferLedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.TransferLedgerEntry
	for k, e := range s.ledger {
		if k.transferID == transferID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].Direction < out[j].Direction
	})
	return out
}

// ListLedger versión de LedgerEntries para el puerto TransferLedgerRepository.
func (s *InventoryStore) ListLedger(ctx context.Context, transferID string) ([]entity.TransferLedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.LedgerEntries(transferID), nil
}

// Get devuelve la fila de inventario o nil si no existe.
func (s *InventoryStore) Get(ctx context.Context, locationID, itemID string) (*entity.LocationInventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.stock[stockKey{locationID, itemID}]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

// ListByLocation filas de una sede ordenadas por ítem.
func (s *InventoryStore) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.LocationInventory, error) {
	s.mu.RLock()
	var list []*entity.LocationInventory
	for k, row := range s.stock {
		if k.locationID == locationID {
			cp := *row
			list = append(list, &cp)
		}
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return page(list, limit, offset), nil
}

// SetLevels fija mínimo y máximo; crea la fila con stock cero si no existe.
func (s *InventoryStore) SetLevels(ctx context.Context, locationID, itemID string, minLevel, maxLevel decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rowLocked(locationID, itemID)
	row.MinStockLevel = minLevel
	row.MaxStockLevel = maxLevel
	row.UpdatedAt = s.now()
	return nil
}

// ListBelowMinimum filas de la sede bajo el mínimo, mayor déficit primero.
func (s *InventoryStore) ListBelowMinimum(ctx context.Context, locationID string) ([]*entity.LocationInventory, error) {
	s.mu.RLock()
	var list []*entity.LocationInventory
	for k, row := range s.stock {
		if k.locationID == locationID && inventory.BelowMinimum(row.CurrentStock, row.MinStockLevel) {
			cp := *row
			list = append(list, &cp)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool {
		di := list[i].MinStockLevel.Sub(list[i].CurrentStock)
		dj := list[j].MinStockLevel.Sub(list[j].CurrentStock)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return list[i].ItemID < list[j].ItemID
	})
	return list, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

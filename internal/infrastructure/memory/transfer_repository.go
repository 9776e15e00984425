package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var _ repository.TransferRepository = (*TransferRepository)(nil)

// TransferRepository traslados en memoria. Guarda copias para que los cambios
// del caller no se filtren sin Update.
type TransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]transfer.StockTransfer
}

// NewTransferRepository crea el repositorio vacío.
func NewTransferRepository() *TransferRepository {
	return &TransferRepository{transfers: make(map[string]transfer.StockTransfer)}
}

func clone(t transfer.StockTransfer) transfer.StockTransfer {
	t.Items = append([]transfer.Item(nil), t.Items...)
	return t
}

func (r *TransferRepository) Create(ctx context.Context, t *transfer.StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transfers[t.ID]; exists {
		return domain.ErrDuplicate
	}
	r.transfers[t.ID] = clone(*t)
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id string) (*transfer.StockTransfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, nil
	}
	cp := clone(t)
	return &cp, nil
}

func (r *TransferRepository) Update(ctx context.Context, t *transfer.StockTransfer, expected transfer.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.transfers[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Status != expected {
		return fmt.Errorf("%w: traslado %s en estado %s", domain.ErrConflict, t.ID, current.Status)
	}
	r.transfers[t.ID] = clone(*t)
	return nil
}

func (r *TransferRepository) List(ctx context.Context, f repository.TransferFilter) ([]*transfer.StockTransfer, error) {
	r.mu.RLock()
	var list []*transfer.StockTransfer
	for _, t := range r.transfers {
		if t.OrganizationID != f.OrganizationID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.LocationID != "" && t.FromLocationID != f.LocationID && t.ToLocationID != f.LocationID {
			continue
		}
		cp := clone(t)
		list = append(list, &cp)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, f.Limit, f.Offset), nil
}

package repository

import (
	"context"

	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

// TransferFilter filtros de listado de traslados.
type TransferFilter struct {
	OrganizationID string
	Status         transfer.Status // vacío = todos
	LocationID     string          // origen o destino; vacío = todas
	Limit          int
	Offset         int
}

// TransferRepository define el puerto de persistencia para StockTransfer.
type TransferRepository interface {
	Create(ctx context.Context, t *transfer.StockTransfer) error
	GetByID(ctx context.Context, id string) (*transfer.StockTransfer, error)
	// Update guarda estado, actores, fechas y cantidades de los ítems solo si el estado
	// guardado sigue siendo expected; si otro actor lo cambió devuelve domain.ErrConflict.
	Update(ctx context.Context, t *transfer.StockTransfer, expected transfer.Status) error
	List(ctx context.Context, filter TransferFilter) ([]*transfer.StockTransfer, error)
}

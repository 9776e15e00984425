package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un ajuste de inventario originado por un traslado.
const (
	DirectionOut = "out" // descuento en la sede origen
	DirectionIn  = "in"  // ingreso en la sede destino
)

// AdjustmentKey identifica un ajuste de forma única: (traslado, ítem, dirección).
// El almacén de inventario la usa para no aplicar dos veces el mismo ajuste.
type AdjustmentKey struct {
	TransferID string
	LocationID string
	ItemID     string
	Direction  string
}

// TransferLedgerEntry registro de un ajuste aplicado (tabla transfer_ledger).
type TransferLedgerEntry struct {
	ID             string
	TransferID     string
	LocationID     string
	ItemID         string
	Direction      string
	Delta          decimal.Decimal // delta solicitado (negativo en salidas)
	ResultingStock decimal.Decimal
	Clamped        bool // la salida superó el stock y se recortó en cero
	AppliedAt      time.Time
}

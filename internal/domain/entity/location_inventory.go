package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationInventory stock de un ítem en una sede, clave (LocationID, ItemID).
// CurrentStock nunca es negativo: las salidas que lo superan se recortan en cero.
type LocationInventory struct {
	LocationID    string
	ItemID        string
	CurrentStock  decimal.Decimal
	MinStockLevel decimal.Decimal
	MaxStockLevel decimal.Decimal
	UpdatedAt     time.Time
}

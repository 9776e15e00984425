package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelResponse stock de un ítem en una sede.
type StockLevelResponse struct {
	LocationID    string          `json:"location_id"`
	ItemID        string          `json:"item_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel decimal.Decimal `json:"max_stock_level"`
	BelowMinimum  bool            `json:"below_minimum"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockLevelListResponse lista paginada de stock por sede.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// SetStockLevelsRequest body para PUT /api/locations/:id/inventory/:item_id/levels.
type SetStockLevelsRequest struct {
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel decimal.Decimal `json:"max_stock_level"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ItemID            string          `json:"item_id"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	MinStockLevel     decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel     decimal.Decimal `json:"max_stock_level"`
	Deficit           decimal.Decimal `json:"deficit"`             // MinStockLevel - CurrentStock
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // hasta MaxStockLevel
	Priority          int             `json:"priority"`            // 1 = más urgente
}

// AdjustStockRequest ajuste manual de stock (conteo físico, merma). El resultado nunca baja de cero.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" validate:"required,max=300"`
}

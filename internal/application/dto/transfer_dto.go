package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest ítem de un traslado. Si TransferredQuantity o ReceivedQuantity
// no se envían se toman iguales a RequestedQuantity.
type TransferItemRequest struct {
	InventoryItemID     string           `json:"inventory_item_id" validate:"required,max=64"`
	RequestedQuantity   decimal.Decimal  `json:"requested_quantity"`
	TransferredQuantity *decimal.Decimal `json:"transferred_quantity,omitempty"`
	ReceivedQuantity    *decimal.Decimal `json:"received_quantity,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers. Submit=true lo deja en pending.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id" validate:"required"`
	ToLocationID   string                `json:"to_location_id" validate:"required,nefield=FromLocationID"`
	Notes          string                `json:"notes" validate:"max=500"`
	Submit         bool                  `json:"submit"`
	Items          []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ItemQuantitiesRequest cantidades reales de un ítem antes de completar.
type ItemQuantitiesRequest struct {
	InventoryItemID     string          `json:"inventory_item_id" validate:"required"`
	TransferredQuantity decimal.Decimal `json:"transferred_quantity"`
	ReceivedQuantity    decimal.Decimal `json:"received_quantity"`
}

// CompleteTransferRequest body opcional para POST /api/transfers/:id/complete.
type CompleteTransferRequest struct {
	Items []ItemQuantitiesRequest `json:"items" validate:"dive"`
}

// CancelTransferRequest body para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// TransferListRequest filtros de GET /api/transfers.
type TransferListRequest struct {
	PageRequest
	Status     string `query:"status" validate:"omitempty,oneof=draft pending approved completed cancelled"`
	LocationID string `query:"location_id"`
}

// TransferItemResponse ítem con su diferencia en tránsito.
type TransferItemResponse struct {
	InventoryItemID     string          `json:"inventory_item_id"`
	RequestedQuantity   decimal.Decimal `json:"requested_quantity"`
	TransferredQuantity decimal.Decimal `json:"transferred_quantity"`
	ReceivedQuantity    decimal.Decimal `json:"received_quantity"`
	TransitVariance     decimal.Decimal `json:"transit_variance"`
}

// TransferResponse traslado completo.
type TransferResponse struct {
	ID                   string                 `json:"id"`
	OrganizationID       string                 `json:"organization_id"`
	FromLocationID       string                 `json:"from_location_id"`
	ToLocationID         string                 `json:"to_location_id"`
	Status               string                 `json:"status"`
	Notes                string                 `json:"notes,omitempty"`
	Items                []TransferItemResponse `json:"items"`
	TotalTransitVariance decimal.Decimal        `json:"total_transit_variance"`
	CreatedBy            string                 `json:"created_by"`
	CreatedAt            time.Time              `json:"created_at"`
	ApprovedBy           string                 `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time             `json:"approved_at,omitempty"`
	ReceivedBy           string                 `json:"received_by,omitempty"`
	CompletedDate        *time.Time             `json:"completed_date,omitempty"`
	CancelledBy          string                 `json:"cancelled_by,omitempty"`
	CancelledAt          *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason         string                 `json:"cancel_reason,omitempty"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReconciledItemResponse ajustes aplicados a un ítem.
type ReconciledItemResponse struct {
	InventoryItemID  string          `json:"inventory_item_id"`
	Transferred      decimal.Decimal `json:"transferred"`
	Received         decimal.Decimal `json:"received"`
	TransitVariance  decimal.Decimal `json:"transit_variance"`
	SourceStock      decimal.Decimal `json:"source_stock"`
	DestinationStock decimal.Decimal `json:"destination_stock"`
}

// AdjustmentFailureResponse ajuste que no se pudo aplicar.
type AdjustmentFailureResponse struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Side            string          `json:"side"`
	LocationID      string          `json:"location_id"`
	Delta           decimal.Decimal `json:"delta"`
	Error           string          `json:"error"`
}

// ReconciliationResponse resultado de completar un traslado.
// Con fallas el traslado sigue en approved y el mismo endpoint sirve de reintento.
type ReconciliationResponse struct {
	Transfer  TransferResponse            `json:"transfer"`
	Succeeded []ReconciledItemResponse    `json:"succeeded"`
	Failures  []AdjustmentFailureResponse `json:"failures"`
}

// LedgerEntryResponse ajuste de inventario aplicado por un traslado.
type LedgerEntryResponse struct {
	ItemID         string          `json:"item_id"`
	LocationID     string          `json:"location_id"`
	Direction      string          `json:"direction"`
	Delta          decimal.Decimal `json:"delta"`
	ResultingStock decimal.Decimal `json:"resulting_stock"`
	Clamped        bool            `json:"clamped"`
	AppliedAt      time.Time       `json:"applied_at"`
}

// TransferLedgerResponse GET /api/transfers/:id/ledger.
type TransferLedgerResponse struct {
	TransferID string                `json:"transfer_id"`
	Entries    []LedgerEntryResponse `json:"entries"`
}

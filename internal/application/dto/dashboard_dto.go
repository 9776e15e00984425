package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	ActiveLocations   int            `json:"active_locations"`
	TransfersByStatus map[string]int `json:"transfers_by_status"`
	LowStockItems     int            `json:"low_stock_items"`

	// Suma de (transferido - recibido) de los traslados completados en el mes en curso.
	MonthlyTransitVariance decimal.Decimal `json:"monthly_transit_variance"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

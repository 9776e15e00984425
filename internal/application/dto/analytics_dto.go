package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// TransitReportRequest parámetros para GET /api/analytics/transit-variance.
type TransitReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; por defecto hoy
	TopN      int    `query:"top_n" validate:"min=0,max=200"`
}

// ── Por ruta ──────────────────────────────────────────────────────────────────

// RouteVarianceDTO pérdida en tránsito de una ruta origen → destino.
type RouteVarianceDTO struct {
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	TransferCount  int             `json:"transfer_count"`
	Transferred    decimal.Decimal `json:"transferred"`
	Received       decimal.Decimal `json:"received"`
	Variance       decimal.Decimal `json:"variance"`     // Transferred - Received
	LossPct        decimal.Decimal `json:"loss_pct"`     // Variance / Transferred * 100
	VariancePct    decimal.Decimal `json:"variance_pct"` // participación % en la diferencia total
}

// ── Por ítem ──────────────────────────────────────────────────────────────────

// ItemVarianceDTO ranking de ítems por diferencia en tránsito.
type ItemVarianceDTO struct {
	Rank                  int             `json:"rank"` // 1 = mayor pérdida
	ItemID                string          `json:"item_id"`
	TransferCount         int             `json:"transfer_count"`
	Transferred           decimal.Decimal `json:"transferred"`
	Received              decimal.Decimal `json:"received"`
	Variance              decimal.Decimal `json:"variance"`
	VariancePct           decimal.Decimal `json:"variance_pct"`
	CumulativeVariancePct decimal.Decimal `json:"cumulative_variance_pct"`
	IsTopPareto           bool            `json:"is_top_pareto"` // dentro del primer 80% de la diferencia acumulada
}

// ── Reporte combinado ─────────────────────────────────────────────────────────

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// TransitReportDTO respuesta de GET /api/analytics/transit-variance.
type TransitReportDTO struct {
	Period        PeriodDTO          `json:"period"`
	TotalVariance decimal.Decimal    `json:"total_variance"`
	Routes        []RouteVarianceDTO `json:"routes"`
	ItemRanking   []ItemVarianceDTO  `json:"item_ranking"`
	ParetoItems   []ItemVarianceDTO  `json:"pareto_items"`
}

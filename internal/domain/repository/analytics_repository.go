package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository consultas de lectura para el resumen del dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// CountActiveLocations sedes activas de la organización.
	CountActiveLocations(ctx context.Context, organizationID string) (int, error)

	// CountTransfersByStatus número de traslados por estado.
	CountTransfersByStatus(ctx context.Context, organizationID string) (map[string]int, error)

	// CountBelowMinimum pares (sede, ítem) con stock menor al mínimo configurado.
	CountBelowMinimum(ctx context.Context, organizationID string) (int, error)

	// SumTransitVariance suma transferido - recibido de los traslados completados en el rango.
	SumTransitVariance(ctx context.Context, organizationID string, from, to time.Time) (decimal.Decimal, error)
}

// RouteVarianceResult agregado de traslados completados por ruta (origen → destino).
type RouteVarianceResult struct {
	FromLocationID string
	ToLocationID   string
	TransferCount  int
	Transferred    decimal.Decimal
	Received       decimal.Decimal
	Variance       decimal.Decimal // Transferred - Received
}

// ItemVarianceResult agregado de traslados completados por ítem.
type ItemVarianceResult struct {
	ItemID        string
	TransferCount int
	Transferred   decimal.Decimal
	Received      decimal.Decimal
	Variance      decimal.Decimal
}

// TransitReportRepository consultas del reporte de pérdidas en tránsito.
type TransitReportRepository interface {
	// GetTransitVarianceByRoute rutas con traslados completados en el rango, mayor diferencia primero.
	GetTransitVarianceByRoute(ctx context.Context, organizationID string, from, to time.Time) ([]RouteVarianceResult, error)

	// GetItemTransitVariance ítems con mayor diferencia en tránsito en el rango (máx limit).
	GetItemTransitVariance(ctx context.Context, organizationID string, from, to time.Time, limit int) ([]ItemVarianceResult, error)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

var (
	_ repository.AnalyticsRepository     = (*AnalyticsRepo)(nil)
	_ repository.TransitReportRepository = (*AnalyticsRepo)(nil)
)

// AnalyticsRepo consultas de solo lectura para el dashboard y el reporte de tránsito.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

func (r *AnalyticsRepo) CountActiveLocations(ctx context.Context, organizationID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM locations WHERE organization_id = $1 AND is_active`, organizationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("analytics.CountActiveLocations: %w", err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountTransfersByStatus(ctx context.Context, organizationID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM stock_transfers
		WHERE organization_id = $1
		GROUP BY status`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountTransfersByStatus: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.CountTransfersByStatus scan: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *AnalyticsRepo) CountBelowMinimum(ctx context.Context, organizationID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM location_inventory li
		JOIN locations l ON l.id = li.location_id
		WHERE l.organization_id = $1
		  AND li.min_stock_level > 0
		  AND li.current_stock < li.min_stock_level`, organizationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("analytics.CountBelowMinimum: %w", err)
	}
	return n, nil
}

// SumTransitVariance usa COALESCE para devolver cero en un período sin traslados.
func (r *AnalyticsRepo) SumTransitVariance(ctx context.Context, organizationID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(i.transferred_quantity - i.received_quantity), 0)
		FROM stock_transfers t
		JOIN stock_transfer_items i ON i.transfer_id = t.id
		WHERE t.organization_id = $1
		  AND t.status = 'completed'
		  AND t.completed_date BETWEEN $2 AND $3`, organizationID, from, to,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("analytics.SumTransitVariance: %w", err)
	}
	return total, nil
}

// GetTransitVarianceByRoute agrupa por (origen, destino) los traslados completados del rango.
func (r *AnalyticsRepo) GetTransitVarianceByRoute(ctx context.Context, organizationID string, from, to time.Time) ([]repository.RouteVarianceResult, error) {
	const query = `
	SELECT
	    t.from_location_id,
	    t.to_location_id,
	    COUNT(DISTINCT t.id)                                  AS transfer_count,
	    SUM(i.transferred_quantity)                           AS transferred,
	    SUM(i.received_quantity)                              AS received,
	    SUM(i.transferred_quantity - i.received_quantity)     AS variance
	FROM stock_transfers t
	JOIN stock_transfer_items i ON i.transfer_id = t.id
	WHERE t.organization_id = $1
	  AND t.status = 'completed'
	  AND t.completed_date BETWEEN $2 AND $3
	GROUP BY t.from_location_id, t.to_location_id
	ORDER BY variance DESC, t.from_location_id, t.to_location_id`

	rows, err := r.pool.Query(ctx, query, organizationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTransitVarianceByRoute: %w", err)
	}
	defer rows.Close()

	var results []repository.RouteVarianceResult
	for rows.Next() {
		var row repository.RouteVarianceResult
		if err := rows.Scan(
			&row.FromLocationID,
			&row.ToLocationID,
			&row.TransferCount,
			&row.Transferred,
			&row.Received,
			&row.Variance,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetTransitVarianceByRoute scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetItemTransitVariance devuelve los `limit` ítems con mayor diferencia en tránsito.
func (r *AnalyticsRepo) GetItemTransitVariance(ctx context.Context, organizationID string, from, to time.Time, limit int) ([]repository.ItemVarianceResult, error) {
	lim, _ := limitClause(limit, 0)
	const query = `
	SELECT
	    i.inventory_item_id,
	    COUNT(*)                                              AS transfer_count,
	    SUM(i.transferred_quantity)                           AS transferred,
	    SUM(i.received_quantity)                              AS received,
	    SUM(i.transferred_quantity - i.received_quantity)     AS variance
	FROM stock_transfers t
	JOIN stock_transfer_items i ON i.transfer_id = t.id
	WHERE t.organization_id = $1
	  AND t.status = 'completed'
	  AND t.completed_date BETWEEN $2 AND $3
	GROUP BY i.inventory_item_id
	ORDER BY variance DESC, i.inventory_item_id
	LIMIT $4`

	rows, err := r.pool.Query(ctx, query, organizationID, from, to, lim)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetItemTransitVariance: %w", err)
	}
	defer rows.Close()

	var results []repository.ItemVarianceResult
	for rows.Next() {
		var row repository.ItemVarianceResult
		if err := rows.Scan(&row.ItemID, &row.TransferCount, &row.Transferred, &row.Received, &row.Variance); err != nil {
			return nil, fmt.Errorf("analytics.GetItemTransitVariance scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

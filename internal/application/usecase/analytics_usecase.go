package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de ítems que acumula ~80% de la pérdida en tránsito
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// AnalyticsUseCase reporte de pérdidas en tránsito:
//   - Diferencia transferido - recibido por ruta.
//   - Ranking de ítems por diferencia.
//   - Identificación de los ítems Pareto (los que concentran ~80% de la pérdida).
type AnalyticsUseCase struct {
	reportRepo repository.TransitReportRepository
	now        func() time.Time
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(reportRepo repository.TransitReportRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{reportRepo: reportRepo, now: time.Now}
}

// GetTransitReport genera el reporte completo para un período.
func (uc *AnalyticsUseCase) GetTransitReport(
	ctx context.Context,
	organizationID string,
	req dto.TransitReportRequest,
) (*dto.TransitReportDTO, error) {
	startDate, endDate, err := parsePeriod(uc.now(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// 1) Rutas e ítems en paralelo (consultas independientes)
	type routeResult struct {
		rows []repository.RouteVarianceResult
		err  error
	}
	type itemResult struct {
		rows []repository.ItemVarianceResult
		err  error
	}

	routeChan := make(chan routeResult, 1)
	itemChan := make(chan itemResult, 1)

	go func() {
		rows, err := uc.reportRepo.GetTransitVarianceByRoute(ctx, organizationID, startDate, endDate)
		routeChan <- routeResult{rows, err}
	}()
	go func() {
		rows, err := uc.reportRepo.GetItemTransitVariance(ctx, organizationID, startDate, endDate, topN)
		itemChan <- itemResult{rows, err}
	}()

	routeRes := <-routeChan
	itemRes := <-itemChan

	if routeRes.err != nil {
		return nil, fmt.Errorf("analytics: rutas: %w", routeRes.err)
	}
	if itemRes.err != nil {
		return nil, fmt.Errorf("analytics: ítems: %w", itemRes.err)
	}

	routes, total := buildRoutes(routeRes.rows)
	ranking := buildItemRanking(itemRes.rows, total)

	paretoItems := []dto.ItemVarianceDTO{}
	for _, it := range ranking {
		if it.IsTopPareto {
			paretoItems = append(paretoItems, it)
		}
	}

	return &dto.TransitReportDTO{
		Period: dto.PeriodDTO{
			StartDate: startDate.Format("2006-01-02"),
			EndDate:   endDate.Format("2006-01-02"),
		},
		TotalVariance: total,
		Routes:        routes,
		ItemRanking:   ranking,
		ParetoItems:   paretoItems,
	}, nil
}

// buildRoutes agrega porcentaje de pérdida y participación; devuelve también la diferencia total.
func buildRoutes(rows []repository.RouteVarianceResult) ([]dto.RouteVarianceDTO, decimal.Decimal) {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Variance)
	}
	routes := make([]dto.RouteVarianceDTO, 0, len(rows))
	for _, r := range rows {
		lossPct := decimal.Zero
		if r.Transferred.IsPositive() {
			lossPct = r.Variance.Div(r.Transferred).Mul(hundred).Round(2)
		}
		sharePct := decimal.Zero
		if total.IsPositive() {
			sharePct = r.Variance.Div(total).Mul(hundred).Round(2)
		}
		routes = append(routes, dto.RouteVarianceDTO{
			FromLocationID: r.FromLocationID,
			ToLocationID:   r.ToLocationID,
			TransferCount:  r.TransferCount,
			Transferred:    r.Transferred,
			Received:       r.Received,
			Variance:       r.Variance,
			LossPct:        lossPct,
			VariancePct:    sharePct,
		})
	}
	return routes, total
}

// buildItemRanking asigna Rank, participación y acumulado. IsTopPareto es verdadero
// mientras el acumulado no supera el 80%; el primer ítem siempre entra.
// Los ítems sin diferencia positiva nunca son Pareto.
func buildItemRanking(rows []repository.ItemVarianceResult, total decimal.Decimal) []dto.ItemVarianceDTO {
	ranking := make([]dto.ItemVarianceDTO, 0, len(rows))
	cumulative := decimal.Zero
	for i, r := range rows {
		sharePct := decimal.Zero
		if total.IsPositive() {
			sharePct = r.Variance.Div(total).Mul(hundred).Round(2)
		}
		cumulative = cumulative.Add(sharePct)
		isPareto := r.Variance.IsPositive() && (cumulative.LessThanOrEqual(pareto80) || i == 0)

		ranking = append(ranking, dto.ItemVarianceDTO{
			Rank:                  i + 1,
			ItemID:                r.ItemID,
			TransferCount:         r.TransferCount,
			Transferred:           r.Transferred,
			Received:              r.Received,
			Variance:              r.Variance,
			VariancePct:           sharePct,
			CumulativeVariancePct: cumulative.Round(2),
			IsTopPareto:           isPareto,
		})
	}
	return ranking
}

// parsePeriod convierte los strings de fecha en time.Time; aplica valores por defecto si están vacíos.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	if endStr == "" {
		end = now
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date inválido: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond) // inclusive hasta el final del día
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date inválido: %w", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date no puede ser posterior a end_date")
	}
	return start, end, nil
}

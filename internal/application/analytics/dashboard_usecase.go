// Package analytics contiene los casos de uso de reportes operativos del dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen operativo de una organización.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para la organización indicada.
//
// Cuatro consultas en paralelo:
//  1. CountActiveLocations
//  2. CountTransfersByStatus
//  3. CountBelowMinimum
//  4. SumTransitVariance(mes en curso)
func (uc *DashboardUseCase) GetSummary(
	ctx context.Context,
	organizationID string,
) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type countResult struct {
		n   int
		err error
	}
	type statusResult struct {
		counts map[string]int
		err    error
	}
	type varianceResult struct {
		total decimal.Decimal
		err   error
	}

	locationsCh := make(chan countResult, 1)
	statusCh := make(chan statusResult, 1)
	lowStockCh := make(chan countResult, 1)
	varianceCh := make(chan varianceResult, 1)

	go func() {
		n, err := uc.analyticsRepo.CountActiveLocations(ctx, organizationID)
		locationsCh <- countResult{n, err}
	}()
	go func() {
		counts, err := uc.analyticsRepo.CountTransfersByStatus(ctx, organizationID)
		statusCh <- statusResult{counts, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountBelowMinimum(ctx, organizationID)
		lowStockCh <- countResult{n, err}
	}()
	go func() {
		total, err := uc.analyticsRepo.SumTransitVariance(ctx, organizationID, monthStart, now)
		varianceCh <- varianceResult{total, err}
	}()

	locations := <-locationsCh
	status := <-statusCh
	lowStock := <-lowStockCh
	variance := <-varianceCh

	if locations.err != nil {
		return nil, fmt.Errorf("dashboard: sedes activas: %w", locations.err)
	}
	if status.err != nil {
		return nil, fmt.Errorf("dashboard: traslados por estado: %w", status.err)
	}
	if lowStock.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo mínimo: %w", lowStock.err)
	}
	if variance.err != nil {
		return nil, fmt.Errorf("dashboard: diferencia en tránsito: %w", variance.err)
	}

	byStatus := status.counts
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	return &dto.DashboardSummaryDTO{
		ActiveLocations:        locations.n,
		TransfersByStatus:      byStatus,
		LowStockItems:          lowStock.n,
		MonthlyTransitVariance: variance.total,
		DateLabel:              monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

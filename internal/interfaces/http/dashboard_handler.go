package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/bizsuite/ledger-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen operativo de la organización.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (active_locations, transfers_by_status, low_stock_items,
// monthly_transit_variance, date_label). Sin parámetros; el mes se calcula en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetOrganizationID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/application/usecase"
)

// AnalyticsHandler maneja los endpoints de analítica de traslados.
type AnalyticsHandler struct {
	uc *usecase.AnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetTransitVariance godoc
// @Summary      Pérdidas en tránsito por ruta y ranking de ítems (Pareto 80/20)
// @Description  Diferencia transferido - recibido de los traslados completados en el período.
// @Tags         analytics
// @Produce      json
// @Param        X-Organization-ID  header  string  true   "Organización"
// @Param        start_date         query   string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date           query   string  false  "Fin del período (YYYY-MM-DD). Default: hoy."
// @Param        top_n              query   int     false  "Máx. ítems en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.TransitReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/transit-variance [get]
func (h *AnalyticsHandler) GetTransitVariance(c *fiber.Ctx) error {
	var req dto.TransitReportRequest
	if err := bindQuery(c, &req); err != nil {
		return respondError(c, err)
	}
	report, err := h.uc.GetTransitReport(c.UserContext(), GetOrganizationID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

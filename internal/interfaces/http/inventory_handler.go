package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/application/inventory"
)

// InventoryHandler stock por sede, niveles mínimo/máximo y reposición.
type InventoryHandler struct {
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, replenishment: replenishment}
}

// ListStock GET /api/locations/:locationId/stock
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.stock.List(c.UserContext(), GetOrganizationID(c), c.Params("locationId"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetStock GET /api/locations/:locationId/stock/:itemId
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.stock.Get(c.UserContext(), GetOrganizationID(c), c.Params("locationId"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetLevels PUT /api/locations/:locationId/stock/:itemId/levels
func (h *InventoryHandler) SetLevels(c *fiber.Ctx) error {
	var in dto.SetStockLevelsRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.stock.SetLevels(c.UserContext(), GetOrganizationID(c), c.Params("locationId"), c.Params("itemId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de stock (conteo físico, merma)
// @Description  Aplica el delta con recorte en cero. No pasa por el ledger de traslados.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Organization-ID  header  string                  true  "Organización"
// @Param        X-Actor-ID         header  string                  true  "Usuario"
// @Param        locationId         path    string                  true  "Sede"
// @Param        itemId             path    string                  true  "Ítem"
// @Param        body               body    dto.AdjustStockRequest  true  "Delta y motivo"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/stock/{itemId}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.stock.Adjust(c.UserContext(), GetOrganizationID(c), GetActorID(c), c.Params("locationId"), c.Params("itemId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición de una sede
// @Description  Ítems con stock bajo el mínimo y la cantidad sugerida para volver al máximo,
// @Description  ordenados por déficit.
// @Tags         inventory
// @Produce      json
// @Param        X-Organization-ID  header  string  true  "Organización"
// @Param        locationId         path    string  true  "Sede"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetOrganizationID(c), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

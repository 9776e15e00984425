package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bizsuite/ledger-api/internal/application/billing"
	"github.com/bizsuite/ledger-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Preview godoc
// @Summary      Calcular totales de una factura sin guardarla
// @Description  Subtotal, desglose de GST por tasa, cargos adicionales, descuento y total.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Organization-ID  header  string                     true  "Organización"
// @Param        body               body    dto.ComputeInvoiceRequest  true  "Líneas y cargos"
// @Success      200  {object}  dto.InvoiceTotalsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/invoices/preview [post]
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.ComputeInvoiceRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	totals, err := h.uc.Preview(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(totals)
}

// Create godoc
// @Summary      Calcular y guardar una factura
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Organization-ID  header  string                    true  "Organización"
// @Param        X-Actor-ID         header  string                    true  "Usuario que emite"
// @Param        body               body    dto.CreateInvoiceRequest  true  "Cabecera, líneas y cargos"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	inv, err := h.uc.Create(c.UserContext(), GetOrganizationID(c), GetActorID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GetByID godoc
// @Summary      Detalle de una factura con líneas y desglose
// @Tags         invoices
// @Produce      json
// @Param        X-Organization-ID  header  string  true  "Organización"
// @Param        id                 path    string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.Get(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// List GET /api/invoices?limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetOrganizationID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

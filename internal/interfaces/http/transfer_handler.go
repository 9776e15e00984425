package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/application/inventory"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

// TransferHandler ciclo de vida de traslados entre sedes.
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado (draft, o pending con submit=true)
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        X-Organization-ID  header  string                     true  "Organización"
// @Param        X-Actor-ID         header  string                     true  "Usuario"
// @Param        body               body    dto.CreateTransferRequest  true  "Sedes e ítems"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetOrganizationID(c), GetActorID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Submit POST /api/transfers/:id/submit
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.Submit(c.UserContext(), GetOrganizationID(c), GetActorID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve POST /api/transfers/:id/approve
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetOrganizationID(c), GetActorID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/transfers/:id/cancel
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelTransferRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Cancel(c.UserContext(), GetOrganizationID(c), GetActorID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar traslado y conciliar inventario
// @Description  Descuenta lo transferido en el origen y suma lo recibido en el destino.
// @Description  Si algún ajuste falla responde 207 con el detalle por ítem; el traslado
// @Description  queda en approved y puede reintentarse sin duplicar los ajustes ya aplicados.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        X-Organization-ID  header  string                       true   "Organización"
// @Param        X-Actor-ID         header  string                       true   "Usuario que recibe"
// @Param        id                 path    string                       true   "ID del traslado"
// @Param        body               body    dto.CompleteTransferRequest  false  "Cantidades finales por ítem"
// @Success      200  {object}  dto.ReconciliationResponse
// @Success      207  {object}  dto.ReconciliationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteTransferRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Complete(c.UserContext(), GetOrganizationID(c), GetActorID(c), c.Params("id"), in)
	var partial *transfer.PartialFailureError
	if errors.As(err, &partial) && out != nil {
		// Nada aplicado y el almacén fuera de servicio: se informa como indisponibilidad.
		if len(out.Succeeded) == 0 && errors.Is(err, domain.ErrStoreUnavailable) {
			return respondError(c, domain.ErrStoreUnavailable)
		}
		return c.Status(fiber.StatusMultiStatus).JSON(out)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/transfers/:id
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Ledger GET /api/transfers/:id/ledger
func (h *TransferHandler) Ledger(c *fiber.Ctx) error {
	out, err := h.uc.Ledger(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/transfers?status=&location_id=&limit=&offset=
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.TransferListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetOrganizationID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

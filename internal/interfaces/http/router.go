package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/bizsuite/ledger-api/internal/application/analytics"
	"github.com/bizsuite/ledger-api/internal/application/billing"
	"github.com/bizsuite/ledger-api/internal/application/inventory"
	"github.com/bizsuite/ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC       *billing.InvoiceUseCase
	TransferUC      *inventory.TransferUseCase
	StockUC         *inventory.StockUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	LocationUC      *usecase.LocationUseCase
	AnalyticsUC     *usecase.AnalyticsUseCase
	DashboardUC     *appanalytics.DashboardUseCase
}

// Router registra las rutas de la API. Todas exigen X-Organization-ID; las que registran
// un actor exigen además X-Actor-ID.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", OrganizationContext())
	actor := RequireActor()

	// Invoices
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices := api.Group("/invoices")
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Post("/", actor, invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)

	// Transfers
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers := api.Group("/transfers")
	transfers.Post("/", actor, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/ledger", transferHandler.Ledger)
	transfers.Post("/:id/submit", actor, transferHandler.Submit)
	transfers.Post("/:id/approve", actor, transferHandler.Approve)
	transfers.Post("/:id/complete", actor, transferHandler.Complete)
	transfers.Post("/:id/cancel", actor, transferHandler.Cancel)

	// Locations + stock por sede
	locationHandler := NewLocationHandler(deps.LocationUC)
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.ReplenishmentUC)
	locations := api.Group("/locations")
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Patch("/:id", locationHandler.Update)
	locations.Delete("/:id", locationHandler.Deactivate)
	locations.Get("/:locationId/stock", inventoryHandler.ListStock)
	locations.Get("/:locationId/stock/:itemId", inventoryHandler.GetStock)
	locations.Put("/:locationId/stock/:itemId/levels", inventoryHandler.SetLevels)
	locations.Post("/:locationId/stock/:itemId/adjust", actor, inventoryHandler.Adjust)
	locations.Get("/:locationId/replenishment", inventoryHandler.GetReplenishmentList)

	// Dashboard y analítica
	api.Get("/dashboard/summary", NewDashboardHandler(deps.DashboardUC).GetSummary)
	api.Get("/analytics/transit-variance", NewAnalyticsHandler(deps.AnalyticsUC).GetTransitVariance)
}

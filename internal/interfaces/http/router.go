package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/tienda-api/internal/application/analytics"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC          *usecase.ItemUseCase
	MoveUC          *inventory.MoveUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	SellUC          *sales.SellUseCase
	LedgerUC        *sales.LedgerUseCase
	DashboardUC     *appanalytics.DashboardUseCase
	ReportUC        *appanalytics.ReportUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Items: CRUD, traslados y ventas
	items := app.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.MoveUC, deps.SellUC)
	items.Post("/", itemHandler.Create)
	items.Post("/bulk", itemHandler.CreateBulk)
	items.Get("/", itemHandler.List)
	items.Get("/stats", itemHandler.Stats)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)
	items.Put("/:id/move", itemHandler.Move)
	items.Post("/:id/sell", itemHandler.Sell)

	api := app.Group("/api")

	// Historial de traslados y libro de ventas
	ledgerHandler := NewLedgerHandler(deps.MoveUC, deps.LedgerUC)
	api.Get("/movements", ledgerHandler.ListMovements)
	transactions := api.Group("/transactions")
	transactions.Get("/", ledgerHandler.ListTransactions)
	transactions.Get("/item/:itemId", ledgerHandler.ListTransactionsByItem)
	transactions.Get("/:id", ledgerHandler.GetTransaction)
	// El dashboard consulta el detalle sin el prefijo /api
	legacy := app.Group("/transactions")
	legacy.Get("/item/:itemId", ledgerHandler.ListTransactionsByItem)
	legacy.Get("/:id", ledgerHandler.GetTransaction)

	// Dashboard y reportes
	reportHandler := NewReportHandler(deps.DashboardUC, deps.LedgerUC, deps.ReportUC, deps.ReplenishmentUC)
	api.Get("/dashboard", reportHandler.Dashboard)
	reports := api.Group("/reports")
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/sales.pdf", reportHandler.SalesPDF)
	reports.Get("/replenishment", reportHandler.Replenishment)
}

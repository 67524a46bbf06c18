package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/tienda-api/internal/application/analytics"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
)

// ReportHandler reportes de solo lectura: dashboard, resumen de ventas, PDF y lista de reposición.
type ReportHandler struct {
	dashboard     *appanalytics.DashboardUseCase
	ledger        *sales.LedgerUseCase
	report        *appanalytics.ReportUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(
	dashboard *appanalytics.DashboardUseCase,
	ledger *sales.LedgerUseCase,
	report *appanalytics.ReportUseCase,
	replenishment *inventory.ReplenishmentUseCase,
) *ReportHandler {
	return &ReportHandler{dashboard: dashboard, ledger: ledger, report: report, replenishment: replenishment}
}

// Dashboard godoc
// @Summary      Resumen del dashboard
// @Description  Tarjetas de stock, ventas históricas, del mes y del día, y el top 5 del mes.
// @Tags         reports
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Summary godoc
// @Summary      Resumen de ventas del período
// @Tags         reports
// @Produce      json
// @Param        from  query  string  false  "Desde (inclusive)"
// @Param        to    query  string  false  "Hasta (exclusivo)"
// @Success      200  {object}  dto.SalesSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.ledger.Summary(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesPDF godoc
// @Summary      Reporte de ventas en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        from  query  string  false  "Desde (inclusive)"
// @Param        to    query  string  false  "Hasta (exclusivo)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales.pdf [get]
func (h *ReportHandler) SalesPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.report.SalesReportPDF(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Replenishment godoc
// @Summary      Lista de reposición bodega -> tienda
// @Description  Ítems de tienda por debajo del umbral de stock bajo con la cantidad sugerida
//
//	a trasladar desde bodega, ordenados por margen histórico y volumen de ventas.
//
// @Tags         reports
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/reports/replenishment [get]
func (h *ReportHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

package ports

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// SalesReportGenerator puerto de salida para renderizar el reporte de ventas (PDF).
type SalesReportGenerator interface {
	GenerateSalesReportPDF(ctx context.Context, report *dto.SalesReportDTO) ([]byte, error)
}

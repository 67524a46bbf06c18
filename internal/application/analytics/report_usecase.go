package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/ports"
	appsales "github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/domain/sales"
)

// ReportUseCase genera el PDF de ventas de un período.
type ReportUseCase struct {
	txRepo    repository.TransactionRepository
	generator ports.SalesReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(txRepo repository.TransactionRepository, generator ports.SalesReportGenerator) *ReportUseCase {
	return &ReportUseCase{txRepo: txRepo, generator: generator}
}

// SalesReportPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
// from y to son opcionales (YYYY-MM-DD o RFC3339); to es exclusivo.
func (uc *ReportUseCase) SalesReportPDF(ctx context.Context, from, to string) (pdfBytes []byte, filename string, err error) {
	f, err := dto.ParseDate("from", from)
	if err != nil {
		return nil, "", err
	}
	t, err := dto.ParseDate("to", to)
	if err != nil {
		return nil, "", err
	}

	txs, err := uc.txRepo.List(ctx, entity.TransactionFilter{From: f, To: t})
	if err != nil {
		return nil, "", fmt.Errorf("reporte: listar ventas: %w", err)
	}
	rows := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, appsales.ToTransactionResponse(tx))
	}

	now := time.Now().UTC()
	report := &dto.SalesReportDTO{
		Title:        "Reporte de ventas",
		PeriodLabel:  periodLabel(f, t),
		GeneratedAt:  now,
		Summary:      *appsales.ToSummaryDTO(sales.Summarize(txs), f, t),
		Transactions: rows,
	}
	pdfBytes, err = uc.generator.GenerateSalesReportPDF(ctx, report)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, fmt.Sprintf("ventas_%s.pdf", now.Format("20060102_150405")), nil
}

func periodLabel(from, to *time.Time) string {
	const layout = "02/01/2006"
	switch {
	case from == nil && to == nil:
		return "Todas las ventas"
	case to == nil:
		return "Desde " + from.Format(layout)
	case from == nil:
		return "Hasta " + to.Format(layout) + " (exclusivo)"
	default:
		return from.Format(layout) + " - " + to.Format(layout) + " (exclusivo)"
	}
}

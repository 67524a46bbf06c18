// Package pdf implementa el reporte de ventas en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período     │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Ventas / Unidades / Ingresos / Costo / Utilidad   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Ítem | Cant | P.Unit | Total | Utilidad     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Ingresos / Costo / UTILIDAD                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.SalesReportGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa ports.SalesReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateSalesReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSalesReportPDF(_ context.Context, report *dto.SalesReportDTO) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		WithAuthor(nonEmpty(g.author, "tienda-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(&report.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Transactions) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin ventas en el período.", props.Text{
				Size: 8, Align: align.Center, Top: 2, Color: colorGray,
			}),
		)))
	}
	m.AddRows(tableDetailRows(report.Transactions)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(&report.Summary))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y período (izq), fecha de generación (der).
func headerRow(report *dto.SalesReportDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(strings.ToUpper(report.Title), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(report.PeriodLabel, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// summaryRow: tarjetas de resumen.
func summaryRow(s *dto.SalesSummaryDTO) core.Row {
	card := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		card("Ventas", fmt.Sprintf("%d", s.TransactionCount)),
		card("Unidades", fmt.Sprintf("%d", s.UnitsSold)),
		card("Ingresos", "$"+formatMoney(s.Revenue)),
		card("Costo", "$"+formatMoney(s.Cost)),
		card("Utilidad", "$"+formatMoney(s.Profit)),
		card("Utilidad %", formatPct(s.ProfitPercentage)),
	)
}

// tableHeaderRow: cabecera de la tabla de ventas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Ítem", 3, align.Left),
		h("Cant.", 1, align.Center),
		h("P.Unit", 2, align.Right),
		h("Total", 2, align.Right),
		h("Utilidad", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por venta.
func tableDetailRows(txs []dto.TransactionResponse) []core.Row {
	result := make([]core.Row, 0, len(txs))
	for _, tx := range txs {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				tx.TransactionDate.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				tx.ItemName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", tx.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(tx.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(tx.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(tx.Profit),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(s *dto.SalesSummaryDTO) core.Row {
	label := func(v string, top float64) core.Component {
		return text.New(v, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		})
	}
	value := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(v string, right float64) core.Component {
		return text.New(v, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: right, Top: 12,
		})
	}
	return row.New(20).Add(
		col.New(6), // espacio izquierdo
		col.New(3).Add(
			label("Ingresos:", 1),
			label("Costo:", 6),
			grand("UTILIDAD:", 2),
		),
		col.New(3).Add(
			value("$"+formatMoney(s.Revenue), 1),
			value("$"+formatMoney(s.Cost), 6),
			grand("$"+formatMoney(s.Profit), 1),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", -1234.5 → "-1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	buf = append(buf, frac...)
	return string(buf)
}

func formatPct(p *decimal.Decimal) string {
	if p == nil {
		return "N/A"
	}
	return p.StringFixed(2) + "%"
}

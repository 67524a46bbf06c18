// Package analytics contiene los casos de uso de reportes: dashboard, resumen y PDF de ventas.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/domain/sales"
)

const dashboardTopItems = 5 // número de ítems en el widget del dashboard

// StockStats fuente de las tarjetas de stock (ItemUseCase.Stats).
type StockStats interface {
	Stats(ctx context.Context) (*dto.ItemStatsResponse, error)
}

// DashboardUseCase genera el resumen del dashboard: stock, ventas históricas, del mes y del día.
// Solo lectura: no toma el lock de ningún ítem.
type DashboardUseCase struct {
	stock  StockStats
	txRepo repository.TransactionRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(stock StockStats, txRepo repository.TransactionRepository) *DashboardUseCase {
	return &DashboardUseCase{stock: stock, txRepo: txRepo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. Stats de stock
//  2. Ventas históricas
//  3. Ventas del mes → agregado del mes + Top 5 ítems
//  4. Ventas de hoy
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := time.Now().UTC()

	// Hoy: [00:00, mañana 00:00)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayEnd := todayStart.AddDate(0, 0, 1)
	// Mes en curso: [día 1, mañana 00:00)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		stock   *dto.ItemStatsResponse
		allTime []*entity.Transaction
		month   []*entity.Transaction
		today   []*entity.Transaction
		g, gctx = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		var err error
		if stock, err = uc.stock.Stats(gctx); err != nil {
			return fmt.Errorf("dashboard: stock: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if allTime, err = uc.txRepo.List(gctx, entity.TransactionFilter{}); err != nil {
			return fmt.Errorf("dashboard: ventas históricas: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if month, err = uc.txRepo.List(gctx, entity.TransactionFilter{From: &monthStart, To: &todayEnd}); err != nil {
			return fmt.Errorf("dashboard: ventas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if today, err = uc.txRepo.List(gctx, entity.TransactionFilter{From: &todayStart, To: &todayEnd}); err != nil {
			return fmt.Errorf("dashboard: ventas de hoy: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardSummaryDTO{
		Stock:     *stock,
		AllTime:   summaryDTO(sales.Summarize(allTime), nil, nil),
		Month:     summaryDTO(sales.Summarize(month), &monthStart, &todayEnd),
		Today:     summaryDTO(sales.Summarize(today), &todayStart, &todayEnd),
		TopItems:  topItems(month, dashboardTopItems),
		DateLabel: monthLabel(now),
	}, nil
}

// topItems agrupa por item_id y devuelve los n de mayor ingreso.
func topItems(txs []*entity.Transaction, n int) []dto.TopItemDTO {
	byID := make(map[string]*dto.TopItemDTO)
	order := make([]string, 0)
	for _, tx := range txs {
		f := sales.Compute(tx)
		t, ok := byID[tx.ItemID]
		if !ok {
			t = &dto.TopItemDTO{ItemID: tx.ItemID, TotalRevenue: decimal.Zero, Profit: decimal.Zero}
			byID[tx.ItemID] = t
			order = append(order, tx.ItemID)
		}
		t.ItemName = tx.ItemName
		t.QuantitySold += tx.Quantity
		t.TotalRevenue = t.TotalRevenue.Add(f.Total)
		t.Profit = t.Profit.Add(f.Profit)
	}

	out := make([]dto.TopItemDTO, 0, len(order))
	hundred := decimal.NewFromInt(100)
	for _, id := range order {
		t := byID[id]
		if t.TotalRevenue.IsPositive() {
			m := t.Profit.Div(t.TotalRevenue).Mul(hundred).Round(2)
			t.MarginPercentage = &m
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func summaryDTO(a sales.Aggregate, from, to *time.Time) dto.SalesSummaryDTO {
	return dto.SalesSummaryDTO{
		TransactionCount: a.Count,
		UnitsSold:        a.Units,
		Revenue:          a.Revenue,
		Cost:             a.Cost,
		Profit:           a.Profit,
		ProfitPercentage: a.ProfitPct,
		From:             from,
		To:               to,
	}
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

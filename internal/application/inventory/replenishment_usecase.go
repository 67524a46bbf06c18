package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/domain/sales"
)

// ReplenishmentUseCase genera la lista de reposición de la tienda desde la bodega.
// Combina stock de ambas ubicaciones con el historial de márgenes para priorizar.
type ReplenishmentUseCase struct {
	itemRepo     repository.ItemRepository
	txRepo       repository.TransactionRepository
	lowThreshold int64
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	lowThreshold int64,
) *ReplenishmentUseCase {
	if lowThreshold <= 0 {
		lowThreshold = 10
	}
	return &ReplenishmentUseCase{itemRepo: itemRepo, txRepo: txRepo, lowThreshold: lowThreshold}
}

// GenerateReplenishmentList devuelve los ítems de tienda bajo el umbral con la cantidad
// sugerida a trasladar desde bodega y un ranking de prioridad por margen y volumen de ventas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Ítems de tienda por debajo del umbral
	shop, err := uc.itemRepo.List(ctx, entity.ItemFilter{Location: entity.LocationShop})
	if err != nil {
		return nil, err
	}
	low := shop[:0:0]
	for _, it := range shop {
		if it.Quantity < uc.lowThreshold {
			low = append(low, it)
		}
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	warehouse, err := uc.itemRepo.List(ctx, entity.ItemFilter{Location: entity.LocationWarehouse, InStockOnly: true})
	if err != nil {
		return nil, err
	}

	// 2. Historial de ventas de los últimos 90 días, agrupado por ítem
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)
	txs, err := uc.txRepo.List(ctx, entity.TransactionFilter{From: &start})
	if err != nil {
		return nil, err
	}
	byItem := make(map[string][]*entity.Transaction)
	for _, tx := range txs {
		byItem[tx.ItemID] = append(byItem[tx.ItemID], tx)
	}

	hundred := decimal.NewFromInt(100)
	ideal := uc.lowThreshold + uc.lowThreshold/2

	// 3. Construir las sugerencias
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, it := range low {
		s := dto.ReplenishmentSuggestionDTO{
			ShopItemID: it.ID,
			ItemName:   it.Name,
			Category:   it.Category,
			ShopStock:  it.Quantity,
			IdealStock: ideal,
		}
		for _, w := range warehouse {
			if w.SameStock(it) && w.Quantity > s.WarehouseStock {
				s.WarehouseItemID = w.ID
				s.WarehouseStock = w.Quantity
			}
		}
		s.SuggestedMoveQty = min(ideal-it.Quantity, s.WarehouseStock)

		if hist := byItem[it.ID]; len(hist) > 0 {
			agg := sales.Summarize(hist)
			s.UnitsSoldLast90Days = agg.Units
			if agg.Revenue.IsPositive() {
				pct := agg.Profit.Div(agg.Revenue).Mul(hundred).Round(2)
				s.GrossMarginPct = &pct
			}
		} else if it.SellPrice.IsPositive() {
			// Sin historial de ventas: estimar margen por precio y costo
			pct := it.SellPrice.Sub(it.BuyPrice).Div(it.SellPrice).Mul(hundred).Round(2)
			s.GrossMarginPct = &pct
		}
		suggestions = append(suggestions, s)
	}

	// 4. Ordenar: primero lo que se puede reponer, luego mayor margen, mayor volumen
	//    y finalmente mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.SuggestedMoveQty > 0) != (b.SuggestedMoveQty > 0) {
			return a.SuggestedMoveQty > 0
		}
		ma, mb := marginOrZero(a.GrossMarginPct), marginOrZero(b.GrossMarginPct)
		if !ma.Equal(mb) {
			return ma.GreaterThan(mb)
		}
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		return a.ShopStock < b.ShopStock
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func marginOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

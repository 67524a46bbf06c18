// Package sales contiene las reglas de precio de una venta: descuento, total,
// utilidad y porcentaje de utilidad. Toda la aritmética es decimal.
package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ValidateDiscount verifica el descuento antes de cualquier mutación.
func ValidateDiscount(discount decimal.Decimal, discountType string) error {
	switch discountType {
	case entity.DiscountTypePercentage, entity.DiscountTypeAmount:
	default:
		return domain.NewValidationError("discount_type", "debe ser percentage o amount")
	}
	if discount.IsNegative() {
		return domain.ErrInvalidDiscount
	}
	if discountType == entity.DiscountTypePercentage && discount.GreaterThan(hundred) {
		return domain.ErrInvalidDiscount
	}
	return nil
}

// EffectivePrice precio unitario después del descuento, nunca negativo.
//
//	percentage: price * (1 - discount/100)
//	amount:     price - discount
func EffectivePrice(price, discount decimal.Decimal, discountType string) decimal.Decimal {
	var p decimal.Decimal
	if discountType == entity.DiscountTypeAmount {
		p = price.Sub(discount)
	} else {
		p = price.Mul(hundred.Sub(discount)).Div(hundred)
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Figures valores derivados de una transacción (no se persisten).
type Figures struct {
	UnitPrice decimal.Decimal  // precio efectivo
	Total     decimal.Decimal  // UnitPrice * Quantity
	Cost      decimal.Decimal  // BuyingPrice * Quantity
	Profit    decimal.Decimal  // Total - Cost
	ProfitPct *decimal.Decimal // nil cuando Cost == 0 (N/A)
}

// Compute calcula los valores derivados de una transacción.
func Compute(tx *entity.Transaction) Figures {
	qty := decimal.NewFromInt(tx.Quantity)
	unit := EffectivePrice(tx.SellingPrice, tx.Discount, tx.DiscountType)
	total := unit.Mul(qty)
	cost := tx.BuyingPrice.Mul(qty)
	profit := total.Sub(cost)
	return Figures{
		UnitPrice: unit,
		Total:     total,
		Cost:      cost,
		Profit:    profit,
		ProfitPct: ProfitPercentage(profit, cost),
	}
}

// ProfitPercentage profit / cost * 100, redondeado a 2 decimales; nil si cost es 0.
func ProfitPercentage(profit, cost decimal.Decimal) *decimal.Decimal {
	if cost.IsZero() {
		return nil
	}
	pct := profit.Div(cost).Mul(hundred).Round(2)
	return &pct
}

// Aggregate totales del libro de ventas.
type Aggregate struct {
	Count     int
	Units     int64
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
	ProfitPct *decimal.Decimal
}

// Summarize suma ingresos, costo y utilidad sobre las transacciones dadas.
func Summarize(txs []*entity.Transaction) Aggregate {
	agg := Aggregate{Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
	for _, tx := range txs {
		f := Compute(tx)
		agg.Count++
		agg.Units += tx.Quantity
		agg.Revenue = agg.Revenue.Add(f.Total)
		agg.Cost = agg.Cost.Add(f.Cost)
		agg.Profit = agg.Profit.Add(f.Profit)
	}
	agg.ProfitPct = ProfitPercentage(agg.Profit, agg.Cost)
	return agg
}

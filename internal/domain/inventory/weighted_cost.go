// Package inventory contiene las reglas de dominio de stock que no dependen de la persistencia.
package inventory

import "github.com/shopspring/decimal"

// WeightedCost devuelve el precio de compra de un registro destino que recibe stock trasladado:
//
//	(destQty*destCost + movedQty*movedCost) / (destQty + movedQty)
//
// redondeado a 2 decimales. Si la suma de unidades no es positiva devuelve el costo entrante.
func WeightedCost(destQty int64, destCost decimal.Decimal, movedQty int64, movedCost decimal.Decimal) decimal.Decimal {
	units := destQty + movedQty
	if units <= 0 {
		return movedCost
	}
	if destQty <= 0 {
		return movedCost.Round(2)
	}
	num := decimal.NewFromInt(destQty).Mul(destCost).Add(decimal.NewFromInt(movedQty).Mul(movedCost))
	return num.Div(decimal.NewFromInt(units)).Round(2)
}

package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-api/internal/domain/inventory"
)

func TestWeightedCost(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name      string
		destQty   int64
		destCost  string
		movedQty  int64
		movedCost string
		want      string
	}{
		{"mitad y mitad", 5, "20", 5, "10", "15"},
		{"destino vacío toma el costo entrante", 0, "99", 4, "12.5", "12.5"},
		{"redondeo a 2 decimales", 1, "10", 2, "5", "6.67"},
		{"mismo costo", 3, "7.25", 9, "7.25", "7.25"},
		{"sin unidades", 0, "3", 0, "4", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.WeightedCost(tt.destQty, d(tt.destCost), tt.movedQty, d(tt.movedCost))
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

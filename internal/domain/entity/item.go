package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ubicaciones válidas de un registro de stock.
const (
	LocationWarehouse = "warehouse" // bodega
	LocationShop      = "shop"      // tienda
)

// ValidLocation indica si loc es una de las dos ubicaciones definidas.
func ValidLocation(loc string) bool {
	return loc == LocationWarehouse || loc == LocationShop
}

// Item representa un registro de stock en exactamente una ubicación.
// Quantity solo cambia vía traslado (MoveUseCase) o venta (SellUseCase).
type Item struct {
	ID          string
	Name        string
	Category    string
	Description string
	BuyPrice    decimal.Decimal // precio de compra
	SellPrice   decimal.Decimal // precio de venta sugerido
	Weight      decimal.Decimal
	Quantity    int64
	Location    string     // warehouse, shop
	ExpiryDate  *time.Time // nil = no vence
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SameStock indica si other representa la misma mercancía (nombre y categoría) que i.
// Se usa para fusionar stock al trasladar entre ubicaciones.
func (i *Item) SameStock(other *Item) bool {
	return normalizeKey(i.Name) == normalizeKey(other.Name) &&
		normalizeKey(i.Category) == normalizeKey(other.Category)
}

// InStock indica si el ítem puede venderse.
func (i *Item) InStock() bool { return i.Quantity > 0 }

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ItemFilter filtros para listar ítems.
type ItemFilter struct {
	Location     string
	Category     string
	ExpiryBefore *time.Time // estrictamente antes; los ítems sin vencimiento se excluyen
	InStockOnly  bool
	Limit        int // 0 = sin límite
	Offset       int
}

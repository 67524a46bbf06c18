package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /items (y cada elemento de POST /items/bulk).
type CreateItemRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Weight      decimal.Decimal `json:"weight"`
	Quantity    int64           `json:"quantity"`
	Location    string          `json:"location"`              // warehouse, shop
	ExpiryDate  string          `json:"expiry_date,omitempty"` // YYYY-MM-DD o RFC3339
}

// UpdateItemRequest body para PUT /items/{id}. Cantidad y ubicación no se editan aquí:
// cambian solo por traslado o venta, y si vienen en el body la petición se rechaza.
type UpdateItemRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	BuyPrice    *decimal.Decimal `json:"buy_price"`
	SellPrice   *decimal.Decimal `json:"sell_price"`
	Weight      *decimal.Decimal `json:"weight"`
	ExpiryDate  *string          `json:"expiry_date"` // "" quita el vencimiento
	Quantity    *int64           `json:"quantity"`
	Location    *string          `json:"location"`
}

// ItemListRequest filtros de GET /items.
type ItemListRequest struct {
	Location     string `query:"location"`
	Category     string `query:"category"`
	ExpiryBefore string `query:"expiry_before"`
	InStock      bool   `query:"in_stock"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// ItemResponse salida de un ítem. "id" es el único identificador en el contrato.
type ItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Weight      decimal.Decimal `json:"weight"`
	Quantity    int64           `json:"quantity"`
	Location    string          `json:"location"`
	ExpiryDate  *string         `json:"expiry_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LocationStatsDTO unidades y valorización de stock de una ubicación.
type LocationStatsDTO struct {
	Items       int             `json:"items"`
	Units       int64           `json:"units"`
	CostValue   decimal.Decimal `json:"cost_value"`   // buy_price * quantity
	RetailValue decimal.Decimal `json:"retail_value"` // sell_price * quantity
}

// ItemStatsResponse tarjetas de la página de inventario.
type ItemStatsResponse struct {
	TotalItems        int                         `json:"total_items"`
	TotalUnits        int64                       `json:"total_units"`
	LowStockItems     int                         `json:"low_stock_items"`    // 0 < quantity < umbral
	OutOfStockItems   int                         `json:"out_of_stock_items"` // quantity == 0
	LowStockThreshold int64                       `json:"low_stock_threshold"`
	ByLocation        map[string]LocationStatsDTO `json:"by_location"`
}

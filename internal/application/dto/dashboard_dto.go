package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard.
// Stock actual, ventas históricas, del mes y del día, más el Top-5 de ítems por ingreso.
type DashboardSummaryDTO struct {
	Stock   ItemStatsResponse `json:"stock"`
	AllTime SalesSummaryDTO   `json:"all_time"`
	Month   SalesSummaryDTO   `json:"month"`
	Today   SalesSummaryDTO   `json:"today"`

	// Top 5 ítems del mes por ingreso (ordenados de mayor a menor revenue)
	TopItems []TopItemDTO `json:"top_items"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// TopItemDTO resumen de un ítem vendido para el widget del dashboard.
// Se agrupa por item_id; ItemName es el snapshot más reciente.
type TopItemDTO struct {
	ItemID           string           `json:"item_id"`
	ItemName         string           `json:"item_name"`
	QuantitySold     int64            `json:"quantity_sold"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	Profit           decimal.Decimal  `json:"profit"`
	MarginPercentage *decimal.Decimal `json:"margin_percentage"` // profit / revenue * 100
}

// ReplenishmentSuggestionDTO sugerencia de traslado bodega -> tienda para un ítem con stock bajo en tienda.
type ReplenishmentSuggestionDTO struct {
	ShopItemID          string           `json:"shop_item_id"`
	WarehouseItemID     string           `json:"warehouse_item_id,omitempty"` // vacío si la bodega no tiene stock
	ItemName            string           `json:"item_name"`
	Category            string           `json:"category"`
	ShopStock           int64            `json:"shop_stock"`
	WarehouseStock      int64            `json:"warehouse_stock"`
	IdealStock          int64            `json:"ideal_stock"`        // umbral * 1.5
	SuggestedMoveQty    int64            `json:"suggested_move_qty"` // min(ideal - shop, bodega)
	GrossMarginPct      *decimal.Decimal `json:"gross_margin_pct"`   // margen histórico; null sin ventas ni precio
	UnitsSoldLast90Days int64            `json:"units_sold_last_90d"`
	Priority            int              `json:"priority"` // 1 = más urgente
}

// SalesReportDTO datos del reporte PDF de ventas.
type SalesReportDTO struct {
	Title        string
	PeriodLabel  string
	GeneratedAt  time.Time
	Summary      SalesSummaryDTO
	Transactions []TransactionResponse
}

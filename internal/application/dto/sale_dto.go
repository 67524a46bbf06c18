package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellItemRequest body para POST /items/{id}/sell.
// Price y BuyPrice toman el sell_price / buy_price del ítem si no se envían.
type SellItemRequest struct {
	Quantity        int64            `json:"quantity"`
	Price           *decimal.Decimal `json:"price"`
	BuyPrice        *decimal.Decimal `json:"buy_price"`
	Discount        *decimal.Decimal `json:"discount"`
	DiscountType    string           `json:"discount_type"`    // percentage (default), amount
	TransactionDate string           `json:"transaction_date"` // default: ahora
}

// TransactionResponse una venta del libro con sus valores derivados.
type TransactionResponse struct {
	ID               string           `json:"id"`
	ItemID           string           `json:"item_id"`
	ItemName         string           `json:"item_name"`
	Quantity         int64            `json:"quantity"`
	BuyingPrice      decimal.Decimal  `json:"buying_price"`
	SellingPrice     decimal.Decimal  `json:"selling_price"`
	Discount         decimal.Decimal  `json:"discount"`
	DiscountType     string           `json:"discount_type"`
	TransactionDate  time.Time        `json:"transaction_date"`
	UnitPrice        decimal.Decimal  `json:"unit_price"` // precio efectivo
	Total            decimal.Decimal  `json:"total"`
	Profit           decimal.Decimal  `json:"profit"`
	ProfitPercentage *decimal.Decimal `json:"profit_percentage"` // null = N/A (costo 0)
}

// TransactionListRequest filtros de GET /api/transactions.
type TransactionListRequest struct {
	From   string `query:"from"` // inclusive, YYYY-MM-DD o RFC3339
	To     string `query:"to"`   // exclusivo
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// SalesSummaryDTO agregado del libro de ventas.
type SalesSummaryDTO struct {
	TransactionCount int              `json:"transaction_count"`
	UnitsSold        int64            `json:"units_sold"`
	Revenue          decimal.Decimal  `json:"revenue"`
	Cost             decimal.Decimal  `json:"cost"`
	Profit           decimal.Decimal  `json:"profit"`
	ProfitPercentage *decimal.Decimal `json:"profit_percentage"`
	From             *time.Time       `json:"from,omitempty"`
	To               *time.Time       `json:"to,omitempty"`
}

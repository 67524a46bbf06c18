package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuento en una venta.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeAmount     = "amount"
)

// Transaction representa una venta completada (libro append-only).
// Precios y nombre son snapshot al momento de la venta; no dependen del estado actual del Item.
type Transaction struct {
	ID              string
	ItemID          string
	ItemName        string
	Quantity        int64
	BuyingPrice     decimal.Decimal
	SellingPrice    decimal.Decimal // precio unitario antes de descuento
	Discount        decimal.Decimal
	DiscountType    string // percentage, amount
	TransactionDate time.Time
	CreatedAt       time.Time
}

// TransactionFilter filtros para consultar el libro de ventas.
type TransactionFilter struct {
	ItemID string
	From   *time.Time // inclusive
	To     *time.Time // exclusivo
	Limit  int
	Offset int
}

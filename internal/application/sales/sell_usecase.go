// Package sales contiene los casos de uso de venta y del libro de ventas.
package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/ports"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/domain/sales"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// SellUseCase descuenta stock y registra la venta en el libro dentro de la misma transacción.
type SellUseCase struct {
	txRunner repository.TxRunner
	locker   *inventory.ItemLocker
	cache    ports.SalesSummaryCache
	log      *logger.Logger
}

// NewSellUseCase construye el caso de uso. cache puede ser nil.
func NewSellUseCase(
	txRunner repository.TxRunner,
	locker *inventory.ItemLocker,
	cache ports.SalesSummaryCache,
	log *logger.Logger,
) *SellUseCase {
	return &SellUseCase{txRunner: txRunner, locker: locker, cache: cache, log: log}
}

// Sell vende in.Quantity unidades del ítem.
//
// Todo lo validable sin el ítem (cantidad, descuento, fecha) se valida antes de tomar el lock,
// de modo que un descuento inválido nunca llega a mutar el stock.
//
// Retorna:
//   - domain.ErrNotFound          si el ítem no existe.
//   - domain.ErrInsufficientStock si in.Quantity supera el stock (también con stock 0).
//   - domain.ErrInvalidDiscount   si el descuento es negativo o un porcentaje > 100.
//   - domain.ErrConcurrencyTimeout si otro traslado/venta retiene el ítem demasiado tiempo.
func (uc *SellUseCase) Sell(ctx context.Context, itemID string, in dto.SellItemRequest) (*dto.TransactionResponse, error) {
	if itemID == "" {
		return nil, domain.NewValidationError("id", "es requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor a 0")
	}
	discountType := in.DiscountType
	if discountType == "" {
		discountType = entity.DiscountTypePercentage
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}
	if err := sales.ValidateDiscount(discount, discountType); err != nil {
		return nil, err
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "no puede ser negativo")
	}
	if in.BuyPrice != nil && in.BuyPrice.IsNegative() {
		return nil, domain.NewValidationError("buy_price", "no puede ser negativo")
	}
	now := time.Now().UTC()
	txDate := now
	if in.TransactionDate != "" {
		d, err := dto.ParseDate("transaction_date", in.TransactionDate)
		if err != nil {
			return nil, err
		}
		txDate = *d
	}

	unlock, err := uc.locker.Lock(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var tx *entity.Transaction
	var remaining int64
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.MovementRepository,
		txRepo repository.TransactionRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if in.Quantity > item.Quantity {
			return domain.ErrInsufficientStock
		}

		price := item.SellPrice
		if in.Price != nil {
			price = *in.Price
		}
		buyPrice := item.BuyPrice
		if in.BuyPrice != nil {
			buyPrice = *in.BuyPrice
		}

		remaining = item.Quantity - in.Quantity
		if err := itemRepo.SetQuantity(ctx, item.ID, remaining, item.Location); err != nil {
			return err
		}
		tx = &entity.Transaction{
			ID:              uuid.New().String(),
			ItemID:          item.ID,
			ItemName:        item.Name,
			Quantity:        in.Quantity,
			BuyingPrice:     buyPrice,
			SellingPrice:    price,
			Discount:        discount,
			DiscountType:    discountType,
			TransactionDate: txDate,
			CreatedAt:       now,
		}
		return txRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo invalidar el cache de resumen de ventas")
		}
	}
	uc.log.Info().
		Str("transaction_id", tx.ID).
		Str("item_id", tx.ItemID).
		Int64("quantity", tx.Quantity).
		Int64("remaining", remaining).
		Msg("venta registrada")

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// ToTransactionResponse convierte la entidad a DTO con los valores derivados.
func ToTransactionResponse(tx *entity.Transaction) dto.TransactionResponse {
	f := sales.Compute(tx)
	return dto.TransactionResponse{
		ID:               tx.ID,
		ItemID:           tx.ItemID,
		ItemName:         tx.ItemName,
		Quantity:         tx.Quantity,
		BuyingPrice:      tx.BuyingPrice,
		SellingPrice:     tx.SellingPrice,
		Discount:         tx.Discount,
		DiscountType:     tx.DiscountType,
		TransactionDate:  tx.TransactionDate,
		UnitPrice:        f.UnitPrice,
		Total:            f.Total,
		Profit:           f.Profit,
		ProfitPercentage: f.ProfitPct,
	}
}

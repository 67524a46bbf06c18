package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// DefaultLowStockThreshold cantidad por debajo de la cual un ítem se considera con stock bajo.
const DefaultLowStockThreshold = 10

// ItemUseCase casos de uso CRUD para ítems. Quantity y Location se manejan vía traslados y ventas.
type ItemUseCase struct {
	repo         repository.ItemRepository
	txRunner     repository.TxRunner
	locker       *inventory.ItemLocker
	lowThreshold int64
}

// NewItemUseCase construye el caso de uso. lowThreshold <= 0 usa DefaultLowStockThreshold.
func NewItemUseCase(
	repo repository.ItemRepository,
	txRunner repository.TxRunner,
	locker *inventory.ItemLocker,
	lowThreshold int64,
) *ItemUseCase {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowStockThreshold
	}
	return &ItemUseCase{repo: repo, txRunner: txRunner, locker: locker, lowThreshold: lowThreshold}
}

// Create valida y crea un ítem con ID nuevo.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	item, err := newItem(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return inventory.ToItemResponse(item), nil
}

// CreateBulk crea todos los ítems en una sola transacción: si uno es inválido no se crea ninguno.
func (uc *ItemUseCase) CreateBulk(ctx context.Context, in []dto.CreateItemRequest) ([]dto.ItemResponse, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("items", "la lista está vacía")
	}
	now := time.Now().UTC()
	items := make([]*entity.Item, 0, len(in))
	for i, req := range in {
		item, err := newItem(req, now)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.MovementRepository,
		_ repository.TransactionRepository,
	) error {
		for _, item := range items {
			if err := itemRepo.Create(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, *inventory.ToItemResponse(item))
	}
	return out, nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return inventory.ToItemResponse(item), nil
}

// List lista ítems filtrados por ubicación, categoría y vencimiento. Sin Limit devuelve todos.
func (uc *ItemUseCase) List(ctx context.Context, in dto.ItemListRequest) ([]dto.ItemResponse, error) {
	if in.Location != "" && !entity.ValidLocation(in.Location) {
		return nil, domain.NewValidationError("location", "debe ser warehouse o shop")
	}
	expiryBefore, err := dto.ParseDate("expiry_before", in.ExpiryBefore)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, entity.ItemFilter{
		Location:     in.Location,
		Category:     strings.TrimSpace(in.Category),
		ExpiryBefore: expiryBefore,
		InStockOnly:  in.InStock,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *inventory.ToItemResponse(it))
	}
	return items, nil
}

// Update actualiza campos descriptivos y precios. No permite modificar Quantity ni Location.
// Lee y escribe bajo el lock del ítem: un traslado que fusiona stock recalcula buy_price
// y no puede pisarse con una lectura vieja.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if in.Quantity != nil {
		return nil, domain.NewValidationError("quantity", "solo cambia por traslado o venta")
	}
	if in.Location != nil {
		return nil, domain.NewValidationError("location", "solo cambia por traslado")
	}
	unlock, err := uc.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.NewValidationError("name", "es requerido")
		}
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, domain.NewValidationError("category", "es requerida")
		}
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.BuyPrice != nil {
		if err := nonNegative("buy_price", *in.BuyPrice); err != nil {
			return nil, err
		}
		item.BuyPrice = *in.BuyPrice
	}
	if in.SellPrice != nil {
		if err := nonNegative("sell_price", *in.SellPrice); err != nil {
			return nil, err
		}
		item.SellPrice = *in.SellPrice
	}
	if in.Weight != nil {
		if err := nonNegative("weight", *in.Weight); err != nil {
			return nil, err
		}
		item.Weight = *in.Weight
	}
	if in.ExpiryDate != nil {
		exp, err := dto.ParseDate("expiry_date", *in.ExpiryDate)
		if err != nil {
			return nil, err
		}
		item.ExpiryDate = exp
	}
	item.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return inventory.ToItemResponse(item), nil
}

// Delete elimina un ítem. Espera el lock del ítem para no cruzarse con un traslado o venta en curso.
// Las ventas históricas conservan item_id e item_name.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	unlock, err := uc.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// Stats calcula las tarjetas de la página de inventario: stock bajo, agotados y valorización por ubicación.
func (uc *ItemUseCase) Stats(ctx context.Context) (*dto.ItemStatsResponse, error) {
	list, err := uc.repo.List(ctx, entity.ItemFilter{})
	if err != nil {
		return nil, err
	}
	out := &dto.ItemStatsResponse{
		LowStockThreshold: uc.lowThreshold,
		ByLocation: map[string]dto.LocationStatsDTO{
			entity.LocationWarehouse: {CostValue: decimal.Zero, RetailValue: decimal.Zero},
			entity.LocationShop:      {CostValue: decimal.Zero, RetailValue: decimal.Zero},
		},
	}
	for _, it := range list {
		out.TotalItems++
		out.TotalUnits += it.Quantity
		switch {
		case it.Quantity == 0:
			out.OutOfStockItems++
		case it.Quantity < uc.lowThreshold:
			out.LowStockItems++
		}
		qty := decimal.NewFromInt(it.Quantity)
		loc := out.ByLocation[it.Location]
		loc.Items++
		loc.Units += it.Quantity
		loc.CostValue = loc.CostValue.Add(it.BuyPrice.Mul(qty))
		loc.RetailValue = loc.RetailValue.Add(it.SellPrice.Mul(qty))
		out.ByLocation[it.Location] = loc
	}
	return out, nil
}

func newItem(in dto.CreateItemRequest, now time.Time) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if category == "" {
		return nil, domain.NewValidationError("category", "es requerida")
	}
	if !entity.ValidLocation(in.Location) {
		return nil, domain.NewValidationError("location", "debe ser warehouse o shop")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	for field, v := range map[string]decimal.Decimal{
		"buy_price":  in.BuyPrice,
		"sell_price": in.SellPrice,
		"weight":     in.Weight,
	} {
		if err := nonNegative(field, v); err != nil {
			return nil, err
		}
	}
	expiry, err := dto.ParseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	return &entity.Item{
		ID:          uuid.New().String(),
		Name:        name,
		Category:    category,
		Description: in.Description,
		BuyPrice:    in.BuyPrice,
		SellPrice:   in.SellPrice,
		Weight:      in.Weight,
		Quantity:    in.Quantity,
		Location:    in.Location,
		ExpiryDate:  expiry,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func nonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	return nil
}

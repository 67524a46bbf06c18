package inventory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// MoveUseCase traslada stock entre bodega y tienda de forma transaccional.
// El traslado corre bajo los locks del origen y del registro destino (si lo hay) y dentro
// de TxRunner.Run (Commit/Rollback).
type MoveUseCase struct {
	txRunner repository.TxRunner
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
	locker   *ItemLocker
	log      *logger.Logger
}

// NewMoveUseCase construye el caso de uso. itemRepo se usa fuera de transacción para
// resolver el destino antes de tomar los locks.
func NewMoveUseCase(
	txRunner repository.TxRunner,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	locker *ItemLocker,
	log *logger.Logger,
) *MoveUseCase {
	return &MoveUseCase{txRunner: txRunner, itemRepo: itemRepo, movRepo: movRepo, locker: locker, log: log}
}

// MoveInput datos de un traslado.
type MoveInput struct {
	ItemID      string
	ToLocation  string
	Quantity    int64
	Description string
}

// maxMoveAttempts reintentos cuando el registro destino cambia entre la resolución y el lock.
const maxMoveAttempts = 3

// errDestChanged indica que hay que volver a resolver el destino.
var errDestChanged = errors.New("destino cambió durante el traslado")

// Move traslada Quantity unidades del ítem a ToLocation.
//
// Política de destino:
//  1. si en el destino existe un registro con el mismo nombre y categoría, se suma ahí
//     y su buy_price pasa a ser el costo promedio ponderado;
//  2. si se traslada todo el stock, el registro cambia de ubicación (mismo id);
//  3. si no, se crea un registro nuevo en el destino con la cantidad trasladada.
//
// El origen nunca se elimina, aunque quede en 0. Origen y destino se bloquean siempre en
// orden de id (locks en proceso y filas), así dos traslados cruzados no se esperan mutuamente.
func (uc *MoveUseCase) Move(ctx context.Context, in MoveInput) (*dto.MoveItemResponse, error) {
	if in.ItemID == "" {
		return nil, domain.NewValidationError("id", "es requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor a 0")
	}
	if !entity.ValidLocation(in.ToLocation) {
		return nil, domain.NewValidationError("to_location", "debe ser warehouse o shop")
	}
	in.ItemID = strings.Clone(in.ItemID)

	for attempt := 1; ; attempt++ {
		out, err := uc.moveOnce(ctx, in)
		if !errors.Is(err, errDestChanged) {
			return out, err
		}
		if attempt == maxMoveAttempts {
			return nil, domain.ErrConcurrencyTimeout
		}
	}
}

// resolveDest busca sin bloquear el registro destino candidato; "" si no hay.
func (uc *MoveUseCase) resolveDest(ctx context.Context, in MoveInput) (string, error) {
	src, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", domain.ErrNotFound
	}
	if src.Location == in.ToLocation {
		return "", domain.ErrInvalidDestination
	}
	dest, err := uc.itemRepo.FindSameStock(ctx, src.Name, src.Category, in.ToLocation, src.ID)
	if err != nil || dest == nil {
		return "", err
	}
	return dest.ID, nil
}

func (uc *MoveUseCase) moveOnce(ctx context.Context, in MoveInput) (*dto.MoveItemResponse, error) {
	destID, err := uc.resolveDest(ctx, in)
	if err != nil {
		return nil, err
	}
	ids := []string{in.ItemID}
	if destID != "" {
		ids = append(ids, destID)
	}
	slices.Sort(ids)

	unlock, err := uc.locker.LockAll(ctx, ids...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now().UTC()
	var out dto.MoveItemResponse
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.TransactionRepository,
	) error {
		// Bloquea las filas en el mismo orden que los locks (SELECT FOR UPDATE en Postgres)
		locked := make(map[string]*entity.Item, len(ids))
		for _, id := range ids {
			it, err := itemRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			locked[id] = it
		}
		src := locked[in.ItemID]
		if src == nil {
			return domain.ErrNotFound
		}
		if src.Location == in.ToLocation {
			return domain.ErrInvalidDestination
		}
		if in.Quantity > src.Quantity {
			return domain.ErrInsufficientStock
		}
		fromLocation := src.Location

		// El destino resuelto antes del lock tiene que seguir siendo el vigente
		current, err := itemRepo.FindSameStock(ctx, src.Name, src.Category, in.ToLocation, src.ID)
		if err != nil {
			return err
		}
		var dest *entity.Item
		switch {
		case current == nil && destID == "":
		case current != nil && current.ID == destID:
			dest = locked[destID]
		default:
			return errDestChanged
		}

		switch {
		case dest != nil:
			dest, err = uc.mergeInto(ctx, itemRepo, src, dest, in.Quantity, now)
		case in.Quantity == src.Quantity:
			dest, err = uc.relocate(ctx, itemRepo, src, in.ToLocation, now)
		default:
			dest, err = uc.split(ctx, itemRepo, src, in.ToLocation, in.Quantity, now)
		}
		if err != nil {
			return err
		}

		if dest.ID != src.ID {
			src.Quantity -= in.Quantity
			src.UpdatedAt = now
			if err := itemRepo.SetQuantity(ctx, src.ID, src.Quantity, src.Location); err != nil {
				return err
			}
		} else {
			src = dest
		}

		mov := &entity.Movement{
			ID:           uuid.New().String(),
			ItemID:       src.ID,
			DestItemID:   dest.ID,
			ItemName:     dest.Name,
			FromLocation: fromLocation,
			ToLocation:   in.ToLocation,
			Quantity:     in.Quantity,
			MovementDate: now,
			Description:  strings.TrimSpace(in.Description),
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		out = dto.MoveItemResponse{
			Source:      *ToItemResponse(src),
			Destination: *ToItemResponse(dest),
			Movement:    ToMovementResponse(mov),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("item_id", in.ItemID).
		Str("dest_item_id", out.Destination.ID).
		Str("from", out.Movement.FromLocation).
		Str("to", in.ToLocation).
		Int64("quantity", in.Quantity).
		Msg("traslado registrado")
	return &out, nil
}

// mergeInto suma la cantidad al registro existente en destino con costo promedio ponderado.
func (uc *MoveUseCase) mergeInto(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	src, dest *entity.Item,
	qty int64,
	now time.Time,
) (*entity.Item, error) {
	if !dest.BuyPrice.Equal(src.BuyPrice) {
		dest.BuyPrice = inventory.WeightedCost(dest.Quantity, dest.BuyPrice, qty, src.BuyPrice)
		dest.UpdatedAt = now
		if err := itemRepo.Update(ctx, dest); err != nil {
			return nil, err
		}
	}
	dest.Quantity += qty
	dest.UpdatedAt = now
	if err := itemRepo.SetQuantity(ctx, dest.ID, dest.Quantity, dest.Location); err != nil {
		return nil, err
	}
	return dest, nil
}

// relocate cambia la ubicación del registro completo.
func (uc *MoveUseCase) relocate(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	src *entity.Item,
	to string,
	now time.Time,
) (*entity.Item, error) {
	moved := *src
	moved.Location = to
	moved.UpdatedAt = now
	if err := itemRepo.SetQuantity(ctx, moved.ID, moved.Quantity, to); err != nil {
		return nil, err
	}
	return &moved, nil
}

// split crea un registro nuevo en destino con la cantidad trasladada.
func (uc *MoveUseCase) split(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	src *entity.Item,
	to string,
	qty int64,
	now time.Time,
) (*entity.Item, error) {
	dest := &entity.Item{
		ID:          uuid.New().String(),
		Name:        src.Name,
		Category:    src.Category,
		Description: src.Description,
		BuyPrice:    src.BuyPrice,
		SellPrice:   src.SellPrice,
		Weight:      src.Weight,
		Quantity:    qty,
		Location:    to,
		ExpiryDate:  src.ExpiryDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := itemRepo.Create(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// History lista el historial de traslados; itemID vacío devuelve todos.
func (uc *MoveUseCase) History(ctx context.Context, itemID string, limit, offset int) ([]dto.MovementResponse, error) {
	list, err := uc.movRepo.List(ctx, entity.MovementFilter{ItemID: itemID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse convierte la entidad a DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ItemID:       m.ItemID,
		DestItemID:   m.DestItemID,
		ItemName:     m.ItemName,
		FromLocation: m.FromLocation,
		ToLocation:   m.ToLocation,
		Quantity:     m.Quantity,
		MovementDate: m.MovementDate,
		Description:  m.Description,
	}
}

// ToItemResponse convierte la entidad a DTO.
func ToItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Description: it.Description,
		BuyPrice:    it.BuyPrice,
		SellPrice:   it.SellPrice,
		Weight:      it.Weight,
		Quantity:    it.Quantity,
		Location:    it.Location,
		ExpiryDate:  dto.FormatDate(it.ExpiryDate),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

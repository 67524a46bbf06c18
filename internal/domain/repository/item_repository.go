package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID devuelve (nil, nil) si no existe, igual que el resto de adaptadores.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate obtiene el ítem bloqueando la fila dentro de la transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// FindSameStock busca en location un registro con igual nombre y categoría (sin distinguir mayúsculas),
	// excluyendo excludeID. No bloquea la fila.
	FindSameStock(ctx context.Context, name, category, location, excludeID string) (*entity.Item, error)
	List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// SetQuantity actualiza cantidad y ubicación; solo lo usan los motores de traslado y venta.
	SetQuantity(ctx context.Context, id string, quantity int64, location string) error
	Delete(ctx context.Context, id string) error
}

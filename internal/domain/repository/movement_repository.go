package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para el historial de traslados (append-only).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
}

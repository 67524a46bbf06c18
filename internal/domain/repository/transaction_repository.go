package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// TransactionRepository define el puerto del libro de ventas (append-only).
// List ordena por transaction_date ascendente y luego por orden de inserción.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter entity.TransactionFilter) ([]*entity.Transaction, error)
}

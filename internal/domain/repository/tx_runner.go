package repository

import "context"

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio aplicado (Rollback).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo ItemRepository,
		movRepo MovementRepository,
		txRepo TransactionRepository,
	) error) error
}

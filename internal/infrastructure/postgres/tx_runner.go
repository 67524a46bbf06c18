package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner da a Move y Sell su unidad transaccional en PostgreSQL. Con READ COMMITTED más
// el SELECT ... FOR UPDATE de GetForUpdate, dos traslados del mismo ítem se serializan en la fila.
// Cada transacción fija lock_timeout: ninguna espera de fila es indefinida.
type TxRunner struct {
	pool        *pgxpool.Pool
	opts        pgx.TxOptions
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout <= 0 deja el lock_timeout del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, lockTimeout: lockTimeout}
}

// Run ejecuta fn con repos atados a la transacción: Commit si fn retorna nil, Rollback si no.
// Los errores de dominio de fn llegan intactos; deadlocks y lock_timeout salen como
// domain.ErrConcurrencyTimeout.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	txRepo repository.TransactionRepository,
) error) error {
	var fnErr error
	err := pgx.BeginTxFunc(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		if r.lockTimeout > 0 {
			// SET no admite parámetros: el valor es un entero formateado por nosotros
			if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
				return fmt.Errorf("set lock_timeout: %w", err)
			}
		}
		fnErr = fn(NewItemRepository(tx), NewMovementRepository(tx), NewTransactionRepository(tx))
		return fnErr
	})
	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		return lockContention(fnErr)
	default:
		return lockContention(fmt.Errorf("transacción: %w", err))
	}
}

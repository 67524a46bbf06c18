package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// Códigos SQLSTATE que el esquema o los locks de fila pueden producir.
const (
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
	codeDeadlock         = "40P01"
	codeLockNotAvailable = "55P03" // lock_timeout vencido
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// wrapWriteError traduce errores de escritura: un CHECK (quantity >= 0) violado equivale a
// stock insuficiente; un id duplicado queda como error interno con contexto.
func wrapWriteError(op, id string, err error) error {
	switch pgCode(err) {
	case codeCheckViolation:
		return fmt.Errorf("%s %s: %w", op, id, domain.ErrInsufficientStock)
	case codeUniqueViolation:
		return fmt.Errorf("%s: id duplicado %s: %w", op, id, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// lockContention convierte un deadlock o un lock_timeout vencido en ErrConcurrencyTimeout
// (se puede reintentar); cualquier otro error se devuelve igual.
func lockContention(err error) error {
	switch pgCode(err) {
	case codeDeadlock, codeLockNotAvailable:
		return fmt.Errorf("%w: %w", domain.ErrConcurrencyTimeout, err)
	default:
		return err
	}
}

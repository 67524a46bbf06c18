package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidDiscount    = errors.New("descuento inválido")
	ErrInvalidDestination = errors.New("ubicación destino inválida")
	ErrConcurrencyTimeout = errors.New("tiempo de espera agotado por operación concurrente sobre el ítem")
)

// ValidationError describe el campo que no pasó la validación. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

package entity

import "time"

// Movement representa un traslado de stock entre ubicaciones. Inmutable una vez creado.
type Movement struct {
	ID           string
	ItemID       string // registro origen
	DestItemID   string // registro donde quedó el stock (puede ser el mismo si se reubicó completo)
	ItemName     string // snapshot al momento del traslado
	FromLocation string
	ToLocation   string
	Quantity     int64
	MovementDate time.Time
	Description  string
}

// MovementFilter filtros para el historial de traslados.
type MovementFilter struct {
	ItemID string // coincide con origen o destino
	Limit  int
	Offset int
}

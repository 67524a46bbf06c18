package dto

import "time"

// MoveItemRequest body para PUT /items/{id}/move.
type MoveItemRequest struct {
	ToLocation  string `json:"to_location"`
	Quantity    int64  `json:"quantity"`
	Description string `json:"description,omitempty"`
}

// MovementResponse un registro del historial de traslados.
type MovementResponse struct {
	ID           string    `json:"id"`
	ItemID       string    `json:"item_id"`
	DestItemID   string    `json:"dest_item_id"`
	ItemName     string    `json:"item_name"`
	FromLocation string    `json:"from_location"`
	ToLocation   string    `json:"to_location"`
	Quantity     int64     `json:"quantity"`
	MovementDate time.Time `json:"movement_date"`
	Description  string    `json:"description"`
}

// MoveItemResponse estado resultante de un traslado.
type MoveItemResponse struct {
	Source      ItemResponse     `json:"source"`
	Destination ItemResponse     `json:"destination"`
	Movement    MovementResponse `json:"movement"`
}

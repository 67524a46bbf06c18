package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
)

// LedgerHandler expone el historial de traslados y el libro de ventas (solo lectura).
type LedgerHandler struct {
	moves  *inventory.MoveUseCase
	ledger *sales.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(moves *inventory.MoveUseCase, ledger *sales.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{moves: moves, ledger: ledger}
}

// ListMovements godoc
// @Summary      Historial de traslados
// @Tags         movements
// @Produce      json
// @Param        item_id  query  string  false  "Filtrar por ítem (origen o destino)"
// @Param        limit    query  int     false  "Límite (sin límite si se omite)"
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.moves.History(c.UserContext(), c.Query("item_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Libro de ventas
// @Tags         transactions
// @Produce      json
// @Param        from    query  string  false  "Desde (inclusive)"
// @Param        to      query  string  false  "Hasta (exclusivo)"
// @Param        limit   query  int     false  "Límite (sin límite si se omite)"
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	in := dto.TransactionListRequest{From: c.Query("from"), To: c.Query("to")}
	in.Limit, in.Offset = pagination(c)
	out, err := h.ledger.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTransaction godoc
// @Summary      Obtener venta por ID
// @Tags         transactions
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
// @Router       /transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	out, err := h.ledger.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransactionsByItem godoc
// @Summary      Ventas de un ítem
// @Tags         transactions
// @Produce      json
// @Param        itemId  path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "Límite (sin límite si se omite)"
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/transactions/item/{itemId} [get]
// @Router       /transactions/item/{itemId} [get]
func (h *LedgerHandler) ListTransactionsByItem(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.ledger.ListByItem(c.UserContext(), c.Params("itemId"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
)

// ItemHandler maneja las peticiones HTTP de ítems, traslados y ventas.
type ItemHandler struct {
	uc   *usecase.ItemUseCase
	move *inventory.MoveUseCase
	sell *sales.SellUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, move *inventory.MoveUseCase, sell *sales.SellUseCase) *ItemHandler {
	return &ItemHandler{uc: uc, move: move, sell: sell}
}

// Create godoc
// @Summary      Crear ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateBulk godoc
// @Summary      Crear varios ítems (todo o nada)
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.CreateItemRequest  true  "Lista de ítems"
// @Success      201   {array}   dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /items/bulk [post]
func (h *ItemHandler) CreateBulk(c *fiber.Ctx) error {
	var in []dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateBulk(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ítems
// @Tags         items
// @Produce      json
// @Param        location       query  string  false  "warehouse | shop"
// @Param        category       query  string  false  "Categoría (exacta)"
// @Param        expiry_before  query  string  false  "Vence antes de (YYYY-MM-DD)"
// @Param        in_stock       query  bool    false  "Solo con stock"
// @Param        limit          query  int     false  "Límite (sin límite si se omite)"
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var in dto.ItemListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Limit, in.Offset = pagination(c)
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de inventario
// @Tags         items
// @Produce      json
// @Success      200  {object}  dto.ItemStatsResponse
// @Router       /items/stats [get]
func (h *ItemHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ítem
// @Description  quantity y location no se editan aquí (usar traslado o venta).
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.UpdateItemRequest   true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ítem
// @Tags         items
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Move godoc
// @Summary      Trasladar stock entre bodega y tienda
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem origen"
// @Param        body  body  dto.MoveItemRequest  true  "to_location, quantity"
// @Success      200   {object}  dto.MoveItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /items/{id}/move [put]
func (h *ItemHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.move.Move(c.UserContext(), inventory.MoveInput{
		ItemID:      c.Params("id"),
		ToLocation:  in.ToLocation,
		Quantity:    in.Quantity,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sell godoc
// @Summary      Registrar venta de un ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.SellItemRequest  true  "quantity, price, buy_price, discount, discount_type, transaction_date"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /items/{id}/sell [post]
func (h *ItemHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.sell.Sell(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

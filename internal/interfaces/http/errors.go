package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP y cuerpo dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidDiscount):
		status, code = fiber.StatusUnprocessableEntity, "INVALID_DISCOUNT"
	case errors.Is(err, domain.ErrInvalidDestination):
		status, code = fiber.StatusUnprocessableEntity, "INVALID_DESTINATION"
	case errors.Is(err, domain.ErrConcurrencyTimeout):
		status, code = fiber.StatusServiceUnavailable, "CONCURRENCY_TIMEOUT"
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pagination lee limit/offset opcionales de la query (ver dto.PageQuery.Normalize).
func pagination(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageQuery{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()
	return p.Limit, p.Offset
}

// ErrorHandler handler de errores de Fiber para rutas inexistentes y errores no manejados.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}

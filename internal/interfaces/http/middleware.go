package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog: método, ruta, status y latencia.
// Toma el request id del header X-Request-ID (lo pone el middleware requestid).
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler escribe la respuesta; aquí solo se registra.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("petición HTTP")
		return nil
	}
}

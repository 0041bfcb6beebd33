package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Recover turns a handler panic into a 500. The poll loop runs outside
// fiber and is not affected.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("status api handler panicked",
					slog.Any("panic", r),
					slog.String("route", c.Method()+" "+c.Path()),
					slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				)

				_ = c.Status(domain.ErrInternal.StatusCode).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    domain.ErrInternal.Code,
						"message": domain.ErrInternal.Message,
					},
				})
			}
		}()
		return c.Next()
	}
}

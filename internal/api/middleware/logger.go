package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs one line per status api request; /health and /ready at debug.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case c.Path() == "/health" || c.Path() == "/ready":
			level = slog.LevelDebug
		}

		attrs := []slog.Attr{
			slog.String("route", c.Method()+" "+c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			slog.String("remote", c.IP()),
		}
		if strings.HasPrefix(c.Path(), "/v1/events") {
			attrs = append(attrs, slog.Bool("websocket", c.Get(fiber.HeaderUpgrade) != ""))
		}

		logger.LogAttrs(c.Context(), level, "status api request", attrs...)
		return err
	}
}

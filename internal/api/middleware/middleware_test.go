package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(buf *bytes.Buffer) *fiber.App {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	app.Use(requestid.New())
	app.Use(Recover(logger))
	app.Use(Logger(logger))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/v1/presence", func(c *fiber.Ctx) error { panic("memory snapshot failed") })
	return app
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	resp, err := newApp(&buf).Test(httptest.NewRequest("GET", "/v1/presence", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	assert.Contains(t, buf.String(), "status api handler panicked")
	assert.Contains(t, buf.String(), resp.Header.Get(fiber.HeaderXRequestID))
}

func TestLogger_HealthChecksAtDebug(t *testing.T) {
	var buf bytes.Buffer
	resp, err := newApp(&buf).Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, buf.String(), "status api request")
}

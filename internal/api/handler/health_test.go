package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/api/middleware"
)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestHealthHandler_Health(t *testing.T) {
	app := newTestApp()
	handler := NewHealthHandler("1.2.3", nil)
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result HealthResponse
	decode(t, resp.Body, &result)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "1.2.3", result.Version)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		ready      ReadyFunc
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no probe",
			ready:      nil,
			wantStatus: 200,
		},
		{
			name:       "store reachable",
			ready:      func(context.Context) error { return nil },
			wantStatus: 200,
		},
		{
			name:       "store unreachable",
			ready:      func(context.Context) error { return errors.New("connection refused") },
			wantStatus: 503,
			wantCode:   "STORE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/ready", NewHealthHandler("dev", tt.ready).Ready)

			resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode == "" {
				var result HealthResponse
				decode(t, resp.Body, &result)
				assert.Equal(t, "ready", result.Status)
				return
			}

			var result map[string]map[string]string
			decode(t, resp.Body, &result)
			assert.Equal(t, tt.wantCode, result["error"]["code"])
		})
	}
}

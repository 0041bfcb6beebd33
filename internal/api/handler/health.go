package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// ReadyFunc reports whether the attendance log can be reached.
type ReadyFunc func(ctx context.Context) error

type HealthHandler struct {
	version string
	ready   ReadyFunc
}

// NewHealthHandler returns a handler whose readiness probe calls ready. A
// nil ready always reports ready.
func NewHealthHandler(version string, ready ReadyFunc) *HealthHandler {
	return &HealthHandler{version: version, ready: ready}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.ready != nil {
		if err := h.ready(c.UserContext()); err != nil {
			return domain.ErrStoreUnavailable.WithError(err)
		}
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}

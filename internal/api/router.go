package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/portaria/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/portaria/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/portaria/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/portaria/internal/ws"
)

// Dependencies são as fontes de leitura do status server. Records is nil
// in zone mode, which keeps no log.
type Dependencies struct {
	Presence handler.PresenceReader
	Mode     string
	Records  handler.RecordLister
	Ready    handler.ReadyFunc
	Version  string
	// Events streams presence events at /v1/events when set. The caller
	// runs the hub.
	Events *ws.Hub
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "Portaria Status API",
		DisableStartupMessage: true,
	})

	return &Router{
		app:    app,
		logger: logger.With("component", "api"),
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var (
		version string
		ready   handler.ReadyFunc
	)
	if r.deps != nil {
		version = r.deps.Version
		ready = r.deps.Ready
	}

	healthHandler := handler.NewHealthHandler(version, ready)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")

	if r.deps.Presence != nil {
		presenceHandler := handler.NewPresenceHandler(r.deps.Presence, r.deps.Mode)
		v1.Get("/presence", presenceHandler.List)
		v1.Get("/presence/:id", presenceHandler.Get)
	}

	if r.deps.Records != nil {
		recordsHandler := handler.NewRecordsHandler(r.deps.Records)
		v1.Get("/records", recordsHandler.List)
	}

	if r.deps.Events != nil {
		v1.Get("/events", ws.UpgradeMiddleware(), ws.Handler(r.deps.Events))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

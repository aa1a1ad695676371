// Package server assembles the HTTP application from configuration.
package server

import (
	"io"
	"time"

	"todoapi/internal/handlers"
	"todoapi/internal/logging"
	"todoapi/internal/middleware"
	"todoapi/internal/services"
	"todoapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Users  *services.UserService
	Todos  *services.TodoService
	Images *services.ImageService
	Tokens *services.TokenService
	Logger logging.Logger

	// BodyLimit bounds request bodies in bytes; zero keeps Fiber's default.
	BodyLimit int
	// AccessLog receives one line per request; nil disables it.
	AccessLog io.Writer
	// EventsEnabled is reported by the health endpoint.
	EventsEnabled bool
}

// New builds the Fiber app with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "todoapi",
		BodyLimit:             d.BodyLimit,
		ErrorHandler:          handlers.ErrorHandler(d.Logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: d.AccessLog,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		events := "disabled"
		if d.EventsEnabled {
			events = "enabled"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
			"events": events,
		})
	})

	v := validation.New()
	auth := middleware.AuthRequired(d.Tokens)

	handlers.NewUserHandler(d.Users, d.Tokens, v).RegisterRoutes(app, auth)
	handlers.NewTodoHandler(d.Todos, v).RegisterRoutes(app, auth)
	handlers.NewImageHandler(d.Images).RegisterRoutes(app, auth)

	return app
}

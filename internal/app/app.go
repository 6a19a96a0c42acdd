// Package app wires the HTTP application together.
package app

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/api/v1/handlers"
	"github.com/tripmesh/concierge/internal/api/v1/middleware"
	v1 "github.com/tripmesh/concierge/internal/api/v1/routes"
)

// NewApp builds the fiber application with middleware and v1 routes
func NewApp(h *handlers.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(middleware.Logger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1.Register(app, h)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

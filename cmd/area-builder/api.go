// Package main provides the area builder API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/area/pkg/services"
	"github.com/dukex/area/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	builder  *services.Builder
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	builder *services.Builder,
) *API {
	return &API{
		logger:   logger,
		builder:  builder,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.builder, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Area Builder API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Area builder listening", "port", port)

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

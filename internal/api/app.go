package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const accessLogFormat = "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n"

type AppOptions struct {
	AccessLog bool
	BodyLimit int
}

// NewApp builds the fiber application with the middleware chain and every route.
func NewApp(handler *Handler, options AppOptions) *fiber.App {
	config := fiber.Config{
		AppName:               "Patientlog",
		DisableStartupMessage: true,
	}
	if options.BodyLimit > 0 {
		config.BodyLimit = options.BodyLimit
	}
	app := fiber.New(config)

	app.Use(recover.New())
	app.Use(RequestID)
	if options.AccessLog {
		app.Use(logger.New(logger.Config{Format: accessLogFormat}))
	}
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)

	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	auth := app.Group("/api/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	api.Get("/catalog", handler.Catalog)

	api.Get("/profile", handler.GetProfile)
	api.Put("/profile", handler.SaveProfile)

	api.Get("/logs", handler.ListLogs)
	api.Post("/logs/import", handler.ImportLogs)
	api.Get("/logs/:date", handler.GetLog)
	api.Put("/logs/:date", handler.UpsertLog)
	api.Delete("/logs/:date", handler.DeleteLog)

	api.Get("/reminders", handler.ListReminders)
	api.Post("/reminders", handler.CreateReminder)
	api.Patch("/reminders/:id", handler.UpdateReminder)
	api.Delete("/reminders/:id", handler.DeleteReminder)
	api.Post("/reminders/:id/complete", handler.CompleteReminder)

	api.Get("/dashboard", handler.GetDashboard)
	api.Get("/export/:format", handler.Export)

	api.Get("/settings", handler.GetSettings)
	api.Put("/settings", handler.UpdateSettings)
	api.Delete("/settings/account", handler.DeleteAccount)

	api.Get("/storage/:file", handler.DownloadSnapshot)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := services.ParseDayRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}

	dashboard, err := handler.dashboardService.Build(c.UserContext(), user, from, to)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(dashboard)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	settings, err := handler.settingsService.Get(user)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(settings)
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var patch services.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := handler.settingsService.Update(user, patch)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(settings)
}

// DeleteAccount removes snapshots and rows, then ends the session.
func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.settingsService.DeleteAccount(c.UserContext(), user); err != nil {
		return handler.respondError(c, err)
	}
	handler.clearAuthCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profileService.Load(c.UserContext(), user)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(profile)
}

func (handler *Handler) SaveProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input services.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := handler.profileService.Save(c.UserContext(), user, input, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(profile)
}

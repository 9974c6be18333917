package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

func (handler *Handler) ListReminders(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	reminders, err := handler.reminderService.List(user)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"reminders": reminders})
}

func (handler *Handler) CreateReminder(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input services.ReminderInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reminder, err := handler.reminderService.Create(user, input, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reminder)
}

func (handler *Handler) UpdateReminder(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	reminderID, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	var patch services.ReminderPatch
	if err := c.BodyParser(&patch); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reminder, err := handler.reminderService.Update(user, reminderID, patch, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(reminder)
}

func (handler *Handler) CompleteReminder(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	reminderID, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	reminder, err := handler.reminderService.Complete(user, reminderID, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(reminder)
}

func (handler *Handler) DeleteReminder(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	reminderID, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.reminderService.Delete(user, reminderID); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

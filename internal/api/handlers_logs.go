package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

func (handler *Handler) ListLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := services.ParseDayRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}

	logs, err := handler.dailyLogService.List(user, from, to, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

func (handler *Handler) GetLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := parseDayParam(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	entry, err := handler.dailyLogService.Get(user, day)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(entry)
}

// UpsertLog answers 201 when the day had no entry and 200 when it was overwritten.
func (handler *Handler) UpsertLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := parseDayParam(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	var input services.DailyLogInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, created, err := handler.dailyLogService.Upsert(c.UserContext(), user, day, input, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	if created {
		c.Status(fiber.StatusCreated)
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := parseDayParam(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	if err := handler.dailyLogService.Delete(c.UserContext(), user, day); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ImportLogs restores rows from the stored daily_logs.csv snapshot.
func (handler *Handler) ImportLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := handler.dailyLogService.ImportCSV(c.UserContext(), user, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(result)
}

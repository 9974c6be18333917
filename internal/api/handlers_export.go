package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/services"
)

// Export streams the user's logs as csv, json or xlsx depending on the :format segment.
func (handler *Handler) Export(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := services.ParseDayRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}

	file, err := handler.exportService.Render(user, c.Params("format"), from, to, handler.clock(), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}

	setExportAttachmentHeaders(c, file.ContentType, file.Filename)
	return c.Send(file.Data)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(fiber.HeaderCacheControl, "no-store")
}

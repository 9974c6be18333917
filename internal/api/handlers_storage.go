package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/storage"
)

var snapshotFiles = map[string]struct {
	file        string
	contentType string
}{
	"profile": {file: storage.ProfileFile, contentType: storage.ContentTypeJSON},
	"logs":    {file: storage.DailyLogsFile, contentType: storage.ContentTypeCSV},
}

// DownloadSnapshot returns the raw stored blob for the current user.
func (handler *Handler) DownloadSnapshot(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	snapshot, ok := snapshotFiles[c.Params("file")]
	if !ok {
		return handler.apiError(c, fiber.StatusNotFound, "unknown snapshot file")
	}

	payload, err := handler.mirror.Raw(c.UserContext(), user.Subject, snapshot.file)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return handler.apiError(c, fiber.StatusNotFound, "snapshot not found")
	}
	if err != nil {
		return handler.respondError(c, err)
	}

	setExportAttachmentHeaders(c, snapshot.contentType, snapshot.file)
	return c.Send(payload)
}

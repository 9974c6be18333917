package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/i18n"
	"github.com/terraincognita07/patientlog/internal/identity"
	"github.com/terraincognita07/patientlog/internal/services"
	"go.uber.org/zap"
)

var badRequestErrors = []error{
	services.ErrInvalidDay,
	services.ErrInvalidRangeStart,
	services.ErrInvalidRangeEnd,
	services.ErrInvalidRange,
	services.ErrProfileNameRequired,
	services.ErrProfileEmergencyContactRequired,
	services.ErrProfileConditionRequired,
	services.ErrProfileFieldTooLong,
	services.ErrProfileInvalidDateOfBirth,
	services.ErrProfileInvalidDiagnosisDate,
	services.ErrProfileDateInFuture,
	services.ErrProfileDiagnosisBeforeBirth,
	services.ErrProfileTooManyMedications,
	services.ErrInvalidSeverity,
	services.ErrInvalidSleepQuality,
	services.ErrInvalidActivityLevel,
	services.ErrInvalidMood,
	services.ErrInvalidLogTime,
	services.ErrInvalidDoctorType,
	services.ErrDoctorTypeDetailsRequired,
	services.ErrDailyLogDateInFuture,
	services.ErrDailyLogTextTooLong,
	services.ErrInvalidReminderType,
	services.ErrInvalidReminderDate,
	services.ErrReminderDateInPast,
	services.ErrInvalidReminderTime,
	services.ErrReminderRecurrenceRequired,
	services.ErrInvalidRecurrence,
	services.ErrReminderTextTooLong,
	services.ErrInvalidTheme,
	services.ErrExportFormatUnsupported,
	services.ErrAuthSubjectMissing,
	identity.ErrTokenEmpty,
}

var notFoundErrors = []error{
	services.ErrProfileNotFound,
	services.ErrDailyLogNotFound,
	services.ErrDailyLogSnapshotNotFound,
	services.ErrReminderNotFound,
}

// apiError writes {"error": message}, localized when the message has a translation.
func (handler *Handler) apiError(c *fiber.Ctx, status int, message string) error {
	if key := i18n.ErrorKey(message); handler.i18n != nil {
		if localized := handler.i18n.Translate(currentLanguage(c), key); localized != key {
			message = localized
		}
	}
	return apiError(c, status, message)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError maps a service error onto a status code. Anything unknown is a 500
// and is logged with the request id.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return handler.apiError(c, fiber.StatusBadRequest, target.Error())
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return handler.apiError(c, fiber.StatusNotFound, target.Error())
		}
	}

	handler.logger.Error("request failed",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return handler.apiError(c, fiber.StatusInternalServerError, "internal error")
}

func parseDayParam(c *fiber.Ctx) (time.Time, error) {
	return services.ParseDay(c.Params("date"))
}

func parseIDParam(c *fiber.Ctx) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

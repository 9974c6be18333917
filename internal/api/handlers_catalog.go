package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/i18n"
	"github.com/terraincognita07/patientlog/internal/models"
)

type catalogOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type catalogResponse struct {
	Language       string          `json:"language"`
	Symptoms       []catalogOption `json:"symptoms"`
	DoctorTypes    []catalogOption `json:"doctor_types"`
	SleepQualities []catalogOption `json:"sleep_qualities"`
	ActivityLevels []catalogOption `json:"activity_levels"`
	Moods          []catalogOption `json:"moods"`
	ReminderTypes  []catalogOption `json:"reminder_types"`
	Recurrences    []catalogOption `json:"recurrences"`
	Themes         []catalogOption `json:"themes"`
}

// Catalog lists every selectable value with a label in the request language.
func (handler *Handler) Catalog(c *fiber.Ctx) error {
	language := currentLanguage(c)
	options := func(group string, values []string) []catalogOption {
		result := make([]catalogOption, 0, len(values))
		for _, value := range values {
			result = append(result, catalogOption{Value: value, Label: handler.i18n.Translate(language, i18n.Key(group, value))})
		}
		return result
	}

	moods := make([]catalogOption, 0, len(models.Moods()))
	for index, mood := range models.Moods() {
		label := handler.i18n.Translate(language, "mood."+strconv.Itoa(index+1))
		moods = append(moods, catalogOption{Value: mood, Label: mood + " " + label})
	}

	return c.JSON(catalogResponse{
		Language:       language,
		Symptoms:       options("symptom", models.BuiltinSymptoms()),
		DoctorTypes:    options("doctor_type", models.DoctorTypes()),
		SleepQualities: options("sleep_quality", models.SleepQualities()),
		ActivityLevels: options("activity_level", models.ActivityLevels()),
		Moods:          moods,
		ReminderTypes:  options("reminder_type", models.ReminderTypes()),
		Recurrences:    options("recurrence", models.Recurrences()),
		Themes:         options("theme", []string{models.ThemeLight, models.ThemeDark, models.ThemeSystem}),
	})
}

package i18n

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/terraincognita07/patientlog/internal/models"
)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, "en")
	ru := mustLoadLocaleMessages(t, "ru")

	missingInRU := missingKeys(en, ru)
	missingInEN := missingKeys(ru, en)

	if len(missingInRU) == 0 && len(missingInEN) == 0 {
		return
	}

	if len(missingInRU) > 0 {
		t.Errorf("keys missing in ru locale: %s", strings.Join(missingInRU, ", "))
	}
	if len(missingInEN) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missingInEN, ", "))
	}
}

func TestLocalesCoverCatalog(t *testing.T) {
	en := mustLoadLocaleMessages(t, "en")

	groups := map[string][]string{
		"symptom":        models.BuiltinSymptoms(),
		"doctor_type":    models.DoctorTypes(),
		"sleep_quality":  models.SleepQualities(),
		"activity_level": models.ActivityLevels(),
		"reminder_type":  models.ReminderTypes(),
		"recurrence":     models.Recurrences(),
		"theme":          {models.ThemeLight, models.ThemeDark, models.ThemeSystem},
	}
	for group, values := range groups {
		for _, value := range values {
			if _, ok := en[Key(group, value)]; !ok {
				t.Errorf("missing en key %s", Key(group, value))
			}
		}
	}
}

func mustLoadLocaleMessages(t *testing.T, language string) map[string]string {
	t.Helper()

	content, err := embeddedLocales.ReadFile("locales/" + language + ".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", language, err)
	}

	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", language, err)
	}
	if len(messages) == 0 {
		t.Fatalf("locale %q is empty", language)
	}

	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

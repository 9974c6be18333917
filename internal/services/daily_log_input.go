package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
)

const (
	MaxDailyLogNotesLength = 2000
	maxDailyLogTextLength  = 500
	otherPrefix            = models.DoctorTypeOther + ": "
)

var (
	ErrInvalidSeverity           = errors.New("symptom severity must be between 1 and 10")
	ErrInvalidSleepQuality       = errors.New("invalid sleep quality")
	ErrInvalidActivityLevel      = errors.New("invalid activity level")
	ErrInvalidMood               = errors.New("invalid mood")
	ErrInvalidLogTime            = errors.New("invalid log time")
	ErrInvalidDoctorType         = errors.New("invalid doctor type")
	ErrDoctorTypeDetailsRequired = errors.New("doctor type details are required")
	ErrDailyLogDateInFuture      = errors.New("daily log date is in the future")
	ErrDailyLogTextTooLong       = errors.New("daily log text is too long")
)

var moodAliases = map[string]string{
	"😊": "🙂",
	"😞": "🙁",
}

// Older snapshots store only the emoji of the sleep quality label.
var sleepQualityAliases = map[string]string{
	"😊": models.SleepGood,
	"😐": models.SleepAverage,
	"😞": models.SleepPoor,
}

type DailyLogInput struct {
	Time              string   `json:"time"`
	Symptoms          []string `json:"symptoms"`
	OtherSymptoms     string   `json:"other_symptoms"`
	MedicationTaken   bool     `json:"medication_taken"`
	MedicationName    string   `json:"medication_name"`
	MedicationDetails string   `json:"medication_details"`
	DoctorVisited     bool     `json:"doctor_visited"`
	DoctorType        string   `json:"doctor_type"`
	DoctorTypeOther   string   `json:"doctor_type_other"`
	DoctorNotes       string   `json:"doctor_notes"`
	SymptomSeverity   int      `json:"symptom_severity"`
	SleepQuality      string   `json:"sleep_quality"`
	ActivityLevel     string   `json:"activity_level"`
	Mood              string   `json:"mood"`
	Notes             string   `json:"notes"`
}

// NormalizeDailyLogInput validates a log entry against the catalog and clears
// fields that do not apply. now supplies the default time in location.
func NormalizeDailyLogInput(input DailyLogInput, now time.Time, location *time.Location) (DailyLogInput, error) {
	if input.SymptomSeverity < models.MinSymptomSeverity || input.SymptomSeverity > models.MaxSymptomSeverity {
		return input, ErrInvalidSeverity
	}

	sleep, ok := normalizeSleepQuality(input.SleepQuality)
	if !ok {
		return input, ErrInvalidSleepQuality
	}
	input.SleepQuality = sleep

	activity, ok := matchCatalogLabel(input.ActivityLevel, models.ActivityLevels())
	if !ok {
		return input, ErrInvalidActivityLevel
	}
	input.ActivityLevel = activity

	mood, ok := normalizeMood(input.Mood)
	if !ok {
		return input, ErrInvalidMood
	}
	input.Mood = mood

	if strings.TrimSpace(input.Time) == "" {
		if location == nil {
			location = time.UTC
		}
		input.Time = now.In(location).Format("15:04")
	} else {
		clock, ok := normalizeClock(input.Time)
		if !ok {
			return input, ErrInvalidLogTime
		}
		input.Time = clock
	}

	input.Symptoms, input.OtherSymptoms = splitCatalogSymptoms(input.Symptoms, input.OtherSymptoms)

	if input.MedicationTaken {
		input.MedicationName = strings.TrimSpace(input.MedicationName)
		input.MedicationDetails = strings.TrimSpace(input.MedicationDetails)
	} else {
		input.MedicationName = ""
		input.MedicationDetails = ""
	}

	if input.DoctorVisited {
		doctorType, err := normalizeDoctorType(input.DoctorType, input.DoctorTypeOther)
		if err != nil {
			return input, err
		}
		input.DoctorType = doctorType
		input.DoctorNotes = strings.TrimSpace(input.DoctorNotes)
	} else {
		input.DoctorType = ""
		input.DoctorNotes = ""
	}
	input.DoctorTypeOther = ""

	for _, value := range []string{input.OtherSymptoms, input.MedicationName, input.MedicationDetails, input.DoctorType, input.DoctorNotes} {
		if len([]rune(value)) > maxDailyLogTextLength {
			return input, ErrDailyLogTextTooLong
		}
	}

	input.Notes = truncateRunes(strings.TrimSpace(input.Notes), MaxDailyLogNotesLength)
	return input, nil
}

// matchCatalogLabel accepts the bare value or a label decorated with an emoji, such as "😊 Good".
func matchCatalogLabel(raw string, catalog []string) (string, bool) {
	for _, word := range strings.Fields(raw) {
		for _, value := range catalog {
			if strings.EqualFold(word, value) {
				return value, true
			}
		}
	}
	return "", false
}

func normalizeSleepQuality(raw string) (string, bool) {
	if alias, ok := sleepQualityAliases[strings.TrimSpace(raw)]; ok {
		return alias, true
	}
	return matchCatalogLabel(raw, models.SleepQualities())
}

func normalizeMood(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if alias, ok := moodAliases[trimmed]; ok {
		trimmed = alias
	}
	for _, mood := range models.Moods() {
		if trimmed == mood {
			return mood, true
		}
	}
	return "", false
}

// splitCatalogSymptoms keeps catalog symptoms in canonical spelling and moves
// everything else into the free-text other symptoms, dropping duplicates.
func splitCatalogSymptoms(selected []string, other string) ([]string, string) {
	catalog := make(map[string]string)
	for _, symptom := range models.BuiltinSymptoms() {
		catalog[strings.ToLower(symptom)] = symptom
	}

	symptoms := make([]string, 0, len(selected))
	seen := make(map[string]struct{})
	extras := make([]string, 0)
	seenExtra := make(map[string]struct{})

	addExtra := func(value string) {
		value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), otherPrefix))
		if value == "" {
			return
		}
		key := strings.ToLower(value)
		if _, duplicate := seenExtra[key]; duplicate {
			return
		}
		seenExtra[key] = struct{}{}
		extras = append(extras, value)
	}

	for _, raw := range selected {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		canonical, known := catalog[key]
		if !known {
			addExtra(raw)
			continue
		}
		if _, duplicate := seen[canonical]; duplicate {
			continue
		}
		seen[canonical] = struct{}{}
		symptoms = append(symptoms, canonical)
	}
	for _, part := range strings.Split(other, ",") {
		addExtra(part)
	}

	return symptoms, strings.Join(extras, ", ")
}

func normalizeDoctorType(doctorType string, otherDetails string) (string, error) {
	doctorType = strings.TrimSpace(doctorType)
	otherDetails = strings.TrimSpace(otherDetails)

	if doctorType == "" {
		return "", nil
	}
	if strings.HasPrefix(doctorType, otherPrefix) {
		otherDetails = strings.TrimSpace(strings.TrimPrefix(doctorType, otherPrefix))
		doctorType = models.DoctorTypeOther
	}

	for _, known := range models.DoctorTypes() {
		if !strings.EqualFold(doctorType, known) {
			continue
		}
		if known != models.DoctorTypeOther {
			return known, nil
		}
		if otherDetails == "" {
			return "", ErrDoctorTypeDetailsRequired
		}
		return otherPrefix + otherDetails, nil
	}
	return "", ErrInvalidDoctorType
}

func applyDailyLogInput(entry *models.DailyLog, input DailyLogInput, now time.Time) {
	entry.Time = input.Time
	entry.Symptoms = input.Symptoms
	entry.OtherSymptoms = input.OtherSymptoms
	entry.MedicationTaken = input.MedicationTaken
	entry.MedicationName = input.MedicationName
	entry.MedicationDetails = input.MedicationDetails
	entry.DoctorVisited = input.DoctorVisited
	entry.DoctorType = input.DoctorType
	entry.DoctorNotes = input.DoctorNotes
	entry.SymptomSeverity = input.SymptomSeverity
	entry.SleepQuality = input.SleepQuality
	entry.ActivityLevel = input.ActivityLevel
	entry.Mood = input.Mood
	entry.Notes = input.Notes
	entry.LoggedAt = now.UTC()
}

func dailyLogInputFromEntry(entry models.DailyLog) DailyLogInput {
	return DailyLogInput{
		Time:              entry.Time,
		Symptoms:          entry.Symptoms,
		OtherSymptoms:     entry.OtherSymptoms,
		MedicationTaken:   entry.MedicationTaken,
		MedicationName:    entry.MedicationName,
		MedicationDetails: entry.MedicationDetails,
		DoctorVisited:     entry.DoctorVisited,
		DoctorType:        entry.DoctorType,
		DoctorNotes:       entry.DoctorNotes,
		SymptomSeverity:   entry.SymptomSeverity,
		SleepQuality:      entry.SleepQuality,
		ActivityLevel:     entry.ActivityLevel,
		Mood:              entry.Mood,
		Notes:             entry.Notes,
	}
}

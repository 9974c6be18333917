package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/terraincognita07/patientlog/internal/models"
)

var dailyLogTestNow = time.Date(2026, 4, 20, 9, 45, 0, 0, time.UTC)

func validDailyLogInput() DailyLogInput {
	return DailyLogInput{
		Time:            "08:30",
		Symptoms:        []string{"Headache"},
		SymptomSeverity: 5,
		SleepQuality:    "Good",
		ActivityLevel:   "Light",
		Mood:            "🙂",
	}
}

func TestNormalizeDailyLogInputRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DailyLogInput)
		wantErr error
	}{
		{name: "severity zero", mutate: func(in *DailyLogInput) { in.SymptomSeverity = 0 }, wantErr: ErrInvalidSeverity},
		{name: "severity eleven", mutate: func(in *DailyLogInput) { in.SymptomSeverity = 11 }, wantErr: ErrInvalidSeverity},
		{name: "unknown sleep", mutate: func(in *DailyLogInput) { in.SleepQuality = "Great" }, wantErr: ErrInvalidSleepQuality},
		{name: "unknown activity", mutate: func(in *DailyLogInput) { in.ActivityLevel = "Extreme" }, wantErr: ErrInvalidActivityLevel},
		{name: "unknown mood", mutate: func(in *DailyLogInput) { in.Mood = "happy" }, wantErr: ErrInvalidMood},
		{name: "bad time", mutate: func(in *DailyLogInput) { in.Time = "half past eight" }, wantErr: ErrInvalidLogTime},
		{name: "unknown doctor", mutate: func(in *DailyLogInput) { in.DoctorVisited, in.DoctorType = true, "Dentist" }, wantErr: ErrInvalidDoctorType},
		{name: "other doctor without details", mutate: func(in *DailyLogInput) { in.DoctorVisited, in.DoctorType = true, "Other" }, wantErr: ErrDoctorTypeDetailsRequired},
		{name: "long medication name", mutate: func(in *DailyLogInput) {
			in.MedicationTaken, in.MedicationName = true, strings.Repeat("x", maxDailyLogTextLength+1)
		}, wantErr: ErrDailyLogTextTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validDailyLogInput()
			tt.mutate(&input)
			if _, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC); !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeDailyLogInput() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeDailyLogInputAcceptsDecoratedLabels(t *testing.T) {
	input := validDailyLogInput()
	input.SleepQuality = "😞 Poor"
	input.ActivityLevel = "moderate"
	input.Mood = "😊"

	got, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC)
	if err != nil {
		t.Fatalf("NormalizeDailyLogInput() unexpected error: %v", err)
	}
	if got.SleepQuality != models.SleepPoor || got.ActivityLevel != models.ActivityModerate || got.Mood != "🙂" {
		t.Fatalf("unexpected normalized labels %q/%q/%q", got.SleepQuality, got.ActivityLevel, got.Mood)
	}
}

func TestNormalizeDailyLogInputAcceptsBareSleepEmoji(t *testing.T) {
	tests := map[string]string{
		"😊":    models.SleepGood,
		" 😐 ":  models.SleepAverage,
		"😞":    models.SleepPoor,
		"Good": models.SleepGood,
	}
	for raw, want := range tests {
		input := validDailyLogInput()
		input.SleepQuality = raw

		got, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC)
		if err != nil {
			t.Fatalf("NormalizeDailyLogInput(sleep=%q) unexpected error: %v", raw, err)
		}
		if got.SleepQuality != want {
			t.Fatalf("NormalizeDailyLogInput(sleep=%q) = %q, want %q", raw, got.SleepQuality, want)
		}
	}

	input := validDailyLogInput()
	input.SleepQuality = "🙂"
	if _, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC); !errors.Is(err, ErrInvalidSleepQuality) {
		t.Fatalf("expected ErrInvalidSleepQuality for unknown emoji, got %v", err)
	}
}

func TestNormalizeDailyLogInputSplitsUnknownSymptoms(t *testing.T) {
	input := validDailyLogInput()
	input.Symptoms = []string{"headache", "Headache", "Ringing ears", "Other: neck pain", " Nausea "}
	input.OtherSymptoms = "ringing ears, jaw pain"

	got, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC)
	if err != nil {
		t.Fatalf("NormalizeDailyLogInput() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"Headache", "Nausea"}, got.Symptoms); diff != "" {
		t.Fatalf("symptoms mismatch (-want +got):\n%s", diff)
	}
	if got.OtherSymptoms != "Ringing ears, neck pain, jaw pain" {
		t.Fatalf("unexpected other symptoms %q", got.OtherSymptoms)
	}
}

func TestNormalizeDailyLogInputClearsConditionalFields(t *testing.T) {
	input := validDailyLogInput()
	input.MedicationName = "Ibuprofen"
	input.MedicationDetails = "200mg"
	input.DoctorType = "Neurologist"
	input.DoctorNotes = "rest"

	got, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC)
	if err != nil {
		t.Fatalf("NormalizeDailyLogInput() unexpected error: %v", err)
	}
	if got.MedicationName != "" || got.MedicationDetails != "" || got.DoctorType != "" || got.DoctorNotes != "" {
		t.Fatalf("expected conditional fields to be cleared, got %#v", got)
	}
}

func TestNormalizeDailyLogInputDoctorOther(t *testing.T) {
	input := validDailyLogInput()
	input.DoctorVisited = true
	input.DoctorType = "other"
	input.DoctorTypeOther = " Chiropractor "

	got, err := NormalizeDailyLogInput(input, dailyLogTestNow, time.UTC)
	if err != nil {
		t.Fatalf("NormalizeDailyLogInput() unexpected error: %v", err)
	}
	if got.DoctorType != "Other: Chiropractor" {
		t.Fatalf("unexpected doctor type %q", got.DoctorType)
	}

	again, err := NormalizeDailyLogInput(got, dailyLogTestNow, time.UTC)
	if err != nil || again.DoctorType != "Other: Chiropractor" {
		t.Fatalf("expected stored doctor type to normalize to itself, got %q (%v)", again.DoctorType, err)
	}
}

func TestNormalizeDailyLogInputDefaultsTimeAndCapsNotes(t *testing.T) {
	location := time.FixedZone("UTC+3", 3*60*60)
	input := validDailyLogInput()
	input.Time = ""
	input.Notes = strings.Repeat("a", MaxDailyLogNotesLength+50)

	got, err := NormalizeDailyLogInput(input, dailyLogTestNow, location)
	if err != nil {
		t.Fatalf("NormalizeDailyLogInput() unexpected error: %v", err)
	}
	if got.Time != "12:45" {
		t.Fatalf("expected local default time 12:45, got %q", got.Time)
	}
	if len([]rune(got.Notes)) != MaxDailyLogNotesLength {
		t.Fatalf("expected notes capped at %d, got %d", MaxDailyLogNotesLength, len([]rune(got.Notes)))
	}
}

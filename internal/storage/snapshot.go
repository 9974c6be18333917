package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
)

const snapshotDateLayout = "2006-01-02"

var ErrMalformedSnapshot = errors.New("malformed snapshot")

// DailyLogsCSVHeader is the fixed column order of daily_logs.csv.
var DailyLogsCSVHeader = []string{
	"date",
	"time",
	"symptoms",
	"other_symptoms",
	"medication_taken",
	"medication_name",
	"doctor_visited",
	"doctor_type",
	"doctor_notes",
	"symptom_severity",
	"sleep_quality",
	"physical_activity",
	"mood",
	"logged_at",
}

var loggedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type profileSnapshot struct {
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"dob"`
	EmergencyContact string   `json:"emergency_contact"`
	Condition        string   `json:"condition"`
	DiagnosisDate    string   `json:"diagnosis_date"`
	Medications      []string `json:"medications"`
	LastUpdated      string   `json:"last_updated"`
}

func EncodeProfileJSON(profile models.Profile, updatedAt time.Time) ([]byte, error) {
	medications := profile.Medications
	if medications == nil {
		medications = []string{}
	}
	snapshot := profileSnapshot{
		Name:             profile.Name,
		DateOfBirth:      formatOptionalDate(profile.DateOfBirth),
		EmergencyContact: profile.EmergencyContact,
		Condition:        profile.Condition,
		DiagnosisDate:    formatOptionalDate(profile.DiagnosisDate),
		Medications:      medications,
		LastUpdated:      updatedAt.UTC().Format(time.RFC3339),
	}
	return json.MarshalIndent(snapshot, "", "  ")
}

// DecodeProfileJSON returns the profile with UserID unset and the snapshot's last_updated time.
func DecodeProfileJSON(data []byte) (models.Profile, time.Time, error) {
	snapshot := profileSnapshot{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return models.Profile{}, time.Time{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	dateOfBirth, err := parseOptionalDate(snapshot.DateOfBirth)
	if err != nil {
		return models.Profile{}, time.Time{}, fmt.Errorf("%w: dob: %v", ErrMalformedSnapshot, err)
	}
	diagnosisDate, err := parseOptionalDate(snapshot.DiagnosisDate)
	if err != nil {
		return models.Profile{}, time.Time{}, fmt.Errorf("%w: diagnosis_date: %v", ErrMalformedSnapshot, err)
	}

	lastUpdated, _ := parseTimestamp(snapshot.LastUpdated)
	profile := models.Profile{
		Name:             strings.TrimSpace(snapshot.Name),
		DateOfBirth:      dateOfBirth,
		EmergencyContact: strings.TrimSpace(snapshot.EmergencyContact),
		Condition:        strings.TrimSpace(snapshot.Condition),
		DiagnosisDate:    diagnosisDate,
		Medications:      snapshot.Medications,
	}
	if profile.Medications == nil {
		profile.Medications = []string{}
	}
	return profile, lastUpdated, nil
}

// EncodeDailyLogsCSV writes logs oldest first under DailyLogsCSVHeader.
func EncodeDailyLogsCSV(logs []models.DailyLog) ([]byte, error) {
	ordered := make([]models.DailyLog, len(logs))
	copy(ordered, logs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	if err := writer.Write(DailyLogsCSVHeader); err != nil {
		return nil, err
	}
	for _, entry := range ordered {
		loggedAt := ""
		if !entry.LoggedAt.IsZero() {
			loggedAt = entry.LoggedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			entry.Date.Format(snapshotDateLayout),
			entry.Time,
			strings.Join(entry.Symptoms, ", "),
			entry.OtherSymptoms,
			strconv.FormatBool(entry.MedicationTaken),
			entry.MedicationName,
			strconv.FormatBool(entry.DoctorVisited),
			entry.DoctorType,
			entry.DoctorNotes,
			strconv.Itoa(entry.SymptomSeverity),
			entry.SleepQuality,
			entry.ActivityLevel,
			entry.Mood,
			loggedAt,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DecodeDailyLogsCSV reads columns by header name, so files with reordered or
// missing optional columns still load. Date is required on every row.
func DecodeDailyLogsCSV(data []byte) ([]models.DailyLog, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.DailyLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedSnapshot, err)
	}

	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = index
	}
	if _, ok := columns["date"]; !ok {
		return nil, fmt.Errorf("%w: missing date column", ErrMalformedSnapshot)
	}

	logs := make([]models.DailyLog, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSnapshot, line, err)
		}

		field := func(name string) string {
			index, ok := columns[name]
			if !ok || index >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[index])
		}

		day, err := time.Parse(snapshotDateLayout, firstDatePart(field("date")))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: date: %v", ErrMalformedSnapshot, line, err)
		}
		severity := 0
		if raw := field("symptom_severity"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: symptom_severity: %v", ErrMalformedSnapshot, line, err)
			}
			severity = int(parsed)
		}
		loggedAt, _ := parseTimestamp(field("logged_at"))

		logs = append(logs, models.DailyLog{
			Date:            day,
			Time:            field("time"),
			Symptoms:        splitSymptoms(field("symptoms")),
			OtherSymptoms:   field("other_symptoms"),
			MedicationTaken: parseSnapshotBool(field("medication_taken")),
			MedicationName:  field("medication_name"),
			DoctorVisited:   parseSnapshotBool(field("doctor_visited")),
			DoctorType:      field("doctor_type"),
			DoctorNotes:     field("doctor_notes"),
			SymptomSeverity: severity,
			SleepQuality:    field("sleep_quality"),
			ActivityLevel:   field("physical_activity"),
			Mood:            field("mood"),
			LoggedAt:        loggedAt,
		})
	}
	return logs, nil
}

func formatOptionalDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.Format(snapshotDateLayout)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(snapshotDateLayout, firstDatePart(raw))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func firstDatePart(raw string) string {
	if len(raw) > len(snapshotDateLayout) {
		return raw[:len(snapshotDateLayout)]
	}
	return raw
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range loggedAtLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseSnapshotBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func splitSymptoms(raw string) []string {
	symptoms := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			symptoms = append(symptoms, trimmed)
		}
	}
	return symptoms
}

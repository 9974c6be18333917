package services

import (
	"errors"
	"strings"
	"time"
)

const (
	maxProfileFieldLength = 200
	maxMedications        = 50
)

var (
	ErrProfileNameRequired             = errors.New("profile name is required")
	ErrProfileEmergencyContactRequired = errors.New("profile emergency contact is required")
	ErrProfileConditionRequired        = errors.New("profile condition is required")
	ErrProfileFieldTooLong             = errors.New("profile field is too long")
	ErrProfileInvalidDateOfBirth       = errors.New("invalid date of birth")
	ErrProfileInvalidDiagnosisDate     = errors.New("invalid diagnosis date")
	ErrProfileDateInFuture             = errors.New("profile date is in the future")
	ErrProfileDiagnosisBeforeBirth     = errors.New("diagnosis date is before date of birth")
	ErrProfileTooManyMedications       = errors.New("too many medications")
)

type ProfileInput struct {
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"dob"`
	EmergencyContact string   `json:"emergency_contact"`
	Condition        string   `json:"condition"`
	DiagnosisDate    string   `json:"diagnosis_date"`
	Medications      []string `json:"medications"`
}

type NormalizedProfileInput struct {
	Name             string
	DateOfBirth      *time.Time
	EmergencyContact string
	Condition        string
	DiagnosisDate    *time.Time
	Medications      []string
}

// NormalizeProfileInput trims the intake form and checks its required fields and dates.
// today is the viewer's current calendar day.
func NormalizeProfileInput(input ProfileInput, today time.Time) (NormalizedProfileInput, error) {
	normalized := NormalizedProfileInput{
		Name:             strings.TrimSpace(input.Name),
		EmergencyContact: strings.TrimSpace(input.EmergencyContact),
		Condition:        strings.TrimSpace(input.Condition),
	}

	switch {
	case normalized.Name == "":
		return NormalizedProfileInput{}, ErrProfileNameRequired
	case normalized.EmergencyContact == "":
		return NormalizedProfileInput{}, ErrProfileEmergencyContactRequired
	case normalized.Condition == "":
		return NormalizedProfileInput{}, ErrProfileConditionRequired
	}
	for _, value := range []string{normalized.Name, normalized.EmergencyContact, normalized.Condition} {
		if len([]rune(value)) > maxProfileFieldLength {
			return NormalizedProfileInput{}, ErrProfileFieldTooLong
		}
	}

	dateOfBirth, err := parseOptionalProfileDate(input.DateOfBirth, today, ErrProfileInvalidDateOfBirth)
	if err != nil {
		return NormalizedProfileInput{}, err
	}
	diagnosisDate, err := parseOptionalProfileDate(input.DiagnosisDate, today, ErrProfileInvalidDiagnosisDate)
	if err != nil {
		return NormalizedProfileInput{}, err
	}
	if dateOfBirth != nil && diagnosisDate != nil && diagnosisDate.Before(*dateOfBirth) {
		return NormalizedProfileInput{}, ErrProfileDiagnosisBeforeBirth
	}
	normalized.DateOfBirth = dateOfBirth
	normalized.DiagnosisDate = diagnosisDate

	medications := make([]string, 0, len(input.Medications))
	for _, medication := range input.Medications {
		trimmed := strings.TrimSpace(medication)
		if trimmed == "" {
			continue
		}
		if len([]rune(trimmed)) > maxProfileFieldLength {
			return NormalizedProfileInput{}, ErrProfileFieldTooLong
		}
		medications = append(medications, trimmed)
	}
	if len(medications) > maxMedications {
		return NormalizedProfileInput{}, ErrProfileTooManyMedications
	}
	normalized.Medications = medications

	return normalized, nil
}

func parseOptionalProfileDate(raw string, today time.Time, invalidErr error) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDay(raw)
	if err != nil {
		return nil, invalidErr
	}
	if parsed.After(today) {
		return nil, ErrProfileDateInFuture
	}
	return &parsed, nil
}

package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
)

const maxReminderTextLength = 500

var (
	ErrInvalidReminderType        = errors.New("invalid reminder type")
	ErrInvalidReminderDate        = errors.New("invalid reminder date")
	ErrReminderDateInPast         = errors.New("reminder date is in the past")
	ErrInvalidReminderTime        = errors.New("invalid reminder time")
	ErrReminderRecurrenceRequired = errors.New("recurrence is required for recurring reminders")
	ErrInvalidRecurrence          = errors.New("invalid recurrence")
	ErrReminderTextTooLong        = errors.New("reminder text is too long")
)

type ReminderInput struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsRecurring bool   `json:"is_recurring"`
	Recurrence  string `json:"recurrence"`
	Text        string `json:"text"`
}

// ReminderPatch carries only the fields a client wants to change.
type ReminderPatch struct {
	Type        *string `json:"type"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	IsRecurring *bool   `json:"is_recurring"`
	Recurrence  *string `json:"recurrence"`
	Text        *string `json:"text"`
}

type NormalizedReminder struct {
	Type        string
	Date        time.Time
	Time        string
	IsRecurring bool
	Recurrence  string
	Text        string
}

// NormalizeReminderInput validates a reminder. Dates before today are rejected
// unless allowPast is set, which updates use when the date is left unchanged.
func NormalizeReminderInput(input ReminderInput, today time.Time, allowPast bool) (NormalizedReminder, error) {
	reminderType, ok := matchExact(input.Type, models.ReminderTypes())
	if !ok {
		return NormalizedReminder{}, ErrInvalidReminderType
	}

	date, err := ParseDay(input.Date)
	if err != nil {
		return NormalizedReminder{}, ErrInvalidReminderDate
	}
	if !allowPast && date.Before(today) {
		return NormalizedReminder{}, ErrReminderDateInPast
	}

	clock, ok := normalizeClock(input.Time)
	if !ok {
		return NormalizedReminder{}, ErrInvalidReminderTime
	}

	recurrence := ""
	if input.IsRecurring {
		if strings.TrimSpace(input.Recurrence) == "" {
			return NormalizedReminder{}, ErrReminderRecurrenceRequired
		}
		recurrence, ok = matchExact(input.Recurrence, models.Recurrences())
		if !ok {
			return NormalizedReminder{}, ErrInvalidRecurrence
		}
	}

	text := strings.TrimSpace(input.Text)
	if len([]rune(text)) > maxReminderTextLength {
		return NormalizedReminder{}, ErrReminderTextTooLong
	}

	return NormalizedReminder{
		Type:        reminderType,
		Date:        date,
		Time:        clock,
		IsRecurring: input.IsRecurring,
		Recurrence:  recurrence,
		Text:        text,
	}, nil
}

func reminderInputFromModel(reminder models.Reminder) ReminderInput {
	return ReminderInput{
		Type:        reminder.Type,
		Date:        FormatDay(reminder.Date),
		Time:        reminder.Time,
		IsRecurring: reminder.IsRecurring,
		Recurrence:  reminder.Recurrence,
		Text:        reminder.Text,
	}
}

func (patch ReminderPatch) applyTo(input ReminderInput) ReminderInput {
	if patch.Type != nil {
		input.Type = *patch.Type
	}
	if patch.Date != nil {
		input.Date = *patch.Date
	}
	if patch.Time != nil {
		input.Time = *patch.Time
	}
	if patch.IsRecurring != nil {
		input.IsRecurring = *patch.IsRecurring
	}
	if patch.Recurrence != nil {
		input.Recurrence = *patch.Recurrence
	}
	if patch.Text != nil {
		input.Text = *patch.Text
	}
	return input
}

// NextOccurrence returns the first occurrence of a recurring schedule strictly after today,
// stepping from the current occurrence. Monthly schedules land on anchorDay, clamped to the
// last day of shorter months; an anchorDay of 0 uses the current occurrence's day.
func NextOccurrence(current time.Time, recurrence string, anchorDay int, today time.Time) time.Time {
	if anchorDay <= 0 {
		anchorDay = current.Day()
	}
	next := current
	for step := 1; !next.After(today); step++ {
		switch recurrence {
		case models.RecurrenceDaily:
			next = current.AddDate(0, 0, step)
		case models.RecurrenceWeekly:
			next = current.AddDate(0, 0, 7*step)
		case models.RecurrenceMonthly:
			next = addMonthsClamped(current, step, anchorDay)
		default:
			return current
		}
	}
	return next
}

func addMonthsClamped(value time.Time, months int, day int) time.Time {
	firstOfTarget := time.Date(value.Year(), value.Month()+time.Month(months), 1, 0, 0, 0, 0, value.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, value.Hour(), value.Minute(), value.Second(), value.Nanosecond(), value.Location())
}

// ReminderDueAt combines the reminder's calendar day and clock time in location.
func ReminderDueAt(reminder models.Reminder, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	clock, err := time.Parse("15:04", reminder.Time)
	if err != nil {
		clock = time.Time{}
	}
	return time.Date(reminder.Date.Year(), reminder.Date.Month(), reminder.Date.Day(), clock.Hour(), clock.Minute(), 0, 0, location)
}

func matchExact(raw string, values []string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, value := range values {
		if strings.EqualFold(trimmed, value) {
			return value, true
		}
	}
	return "", false
}

package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
)

var (
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrReminderLoadFailed   = errors.New("load reminder failed")
	ErrReminderSaveFailed   = errors.New("save reminder failed")
	ErrReminderDeleteFailed = errors.New("delete reminder failed")
)

type ReminderRepository interface {
	ListByUser(userID uint) ([]models.Reminder, error)
	FindByIDForUser(reminderID uint, userID uint) (models.Reminder, bool, error)
	Create(reminder *models.Reminder) error
	Save(reminder *models.Reminder) error
	Delete(reminder *models.Reminder) error
}

type ReminderService struct {
	reminders ReminderRepository
}

func NewReminderService(reminders ReminderRepository) *ReminderService {
	return &ReminderService{reminders: reminders}
}

func (service *ReminderService) List(user *models.User) ([]models.Reminder, error) {
	reminders, err := service.reminders.ListByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReminderLoadFailed, err)
	}
	return reminders, nil
}

func (service *ReminderService) Create(user *models.User, input ReminderInput, now time.Time, location *time.Location) (models.Reminder, error) {
	normalized, err := NormalizeReminderInput(input, CalendarDay(now, location), false)
	if err != nil {
		return models.Reminder{}, err
	}

	reminder := models.Reminder{UserID: user.ID}
	applyNormalizedReminder(&reminder, normalized)
	if err := service.reminders.Create(&reminder); err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrReminderSaveFailed, err)
	}
	return reminder, nil
}

// Update applies a partial change. Moving the schedule clears the notification stamp.
func (service *ReminderService) Update(user *models.User, reminderID uint, patch ReminderPatch, now time.Time, location *time.Location) (models.Reminder, error) {
	reminder, err := service.load(user, reminderID)
	if err != nil {
		return models.Reminder{}, err
	}

	dateUnchanged := patch.Date == nil || *patch.Date == FormatDay(reminder.Date)
	normalized, err := NormalizeReminderInput(patch.applyTo(reminderInputFromModel(reminder)), CalendarDay(now, location), dateUnchanged)
	if err != nil {
		return models.Reminder{}, err
	}

	if !normalized.Date.Equal(reminder.Date) || normalized.Time != reminder.Time {
		reminder.NotifiedAt = nil
	}
	applyNormalizedReminder(&reminder, normalized)
	if err := service.reminders.Save(&reminder); err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrReminderSaveFailed, err)
	}
	return reminder, nil
}

// Complete closes a one-off reminder. A recurring reminder records the completion
// and moves past both the current occurrence and today instead.
func (service *ReminderService) Complete(user *models.User, reminderID uint, now time.Time, location *time.Location) (models.Reminder, error) {
	reminder, err := service.load(user, reminderID)
	if err != nil {
		return models.Reminder{}, err
	}

	completedAt := now.UTC()
	reminder.CompletedAt = &completedAt
	if reminder.IsRecurring && reminder.Recurrence != models.RecurrenceNone {
		after := CalendarDay(now, location)
		if reminder.Date.After(after) {
			after = reminder.Date
		}
		reminder.Date = NextOccurrence(reminder.Date, reminder.Recurrence, reminder.AnchorDay, after)
		reminder.IsCompleted = false
		reminder.NotifiedAt = nil
	} else {
		reminder.IsCompleted = true
	}

	if err := service.reminders.Save(&reminder); err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrReminderSaveFailed, err)
	}
	return reminder, nil
}

func (service *ReminderService) Delete(user *models.User, reminderID uint) error {
	reminder, err := service.load(user, reminderID)
	if err != nil {
		return err
	}
	if err := service.reminders.Delete(&reminder); err != nil {
		return fmt.Errorf("%w: %v", ErrReminderDeleteFailed, err)
	}
	return nil
}

// load returns ErrReminderNotFound for reminders owned by someone else.
func (service *ReminderService) load(user *models.User, reminderID uint) (models.Reminder, error) {
	reminder, found, err := service.reminders.FindByIDForUser(reminderID, user.ID)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrReminderLoadFailed, err)
	}
	if !found {
		return models.Reminder{}, ErrReminderNotFound
	}
	return reminder, nil
}

// applyNormalizedReminder re-anchors the schedule only when the date itself changes, so a
// monthly reminder clamped into a short month keeps its original day.
func applyNormalizedReminder(reminder *models.Reminder, normalized NormalizedReminder) {
	if reminder.AnchorDay == 0 || !normalized.Date.Equal(reminder.Date) {
		reminder.AnchorDay = normalized.Date.Day()
	}
	reminder.Type = normalized.Type
	reminder.Date = normalized.Date
	reminder.Time = normalized.Time
	reminder.IsRecurring = normalized.IsRecurring
	reminder.Recurrence = normalized.Recurrence
	reminder.Text = normalized.Text
}

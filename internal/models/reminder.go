package models

import "time"

const (
	ReminderTypeMedication  = "Medication"
	ReminderTypeAppointment = "Appointment"
	ReminderTypeLogEntry    = "Log Entry"
	ReminderTypeOther       = "Other"
)

const (
	RecurrenceNone    = ""
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

type Reminder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"-"`
	Type        string     `gorm:"not null" json:"type"`
	Date        time.Time  `gorm:"type:date;not null" json:"date"`
	Time        string     `gorm:"not null" json:"time"`
	IsRecurring bool       `gorm:"not null;default:false" json:"is_recurring"`
	Recurrence  string     `gorm:"not null;default:''" json:"recurrence"`
	AnchorDay   int        `gorm:"not null;default:0" json:"-"`
	Text        string     `json:"text"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	NotifiedAt  *time.Time `json:"notified_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

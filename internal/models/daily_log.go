package models

import "time"

type DailyLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;uniqueIndex:uidx_daily_logs_user_date" json:"-"`
	Date              time.Time `gorm:"type:date;not null;uniqueIndex:uidx_daily_logs_user_date" json:"date"`
	Time              string    `gorm:"not null;default:''" json:"time"`
	Symptoms          []string  `gorm:"serializer:json" json:"symptoms"`
	OtherSymptoms     string    `json:"other_symptoms"`
	MedicationTaken   bool      `gorm:"not null;default:false" json:"medication_taken"`
	MedicationName    string    `json:"medication_name"`
	MedicationDetails string    `json:"medication_details"`
	DoctorVisited     bool      `gorm:"not null;default:false" json:"doctor_visited"`
	DoctorType        string    `json:"doctor_type"`
	DoctorNotes       string    `json:"doctor_notes"`
	SymptomSeverity   int       `gorm:"not null" json:"symptom_severity"`
	SleepQuality      string    `gorm:"not null" json:"sleep_quality"`
	ActivityLevel     string    `gorm:"not null" json:"activity_level"`
	Mood              string    `gorm:"not null" json:"mood"`
	Notes             string    `json:"notes"`
	LoggedAt          time.Time `json:"logged_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

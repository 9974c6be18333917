package models

import "time"

// Profile is the patient's static intake record.
type Profile struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	UserID           uint       `gorm:"not null;uniqueIndex" json:"-"`
	Name             string     `gorm:"not null" json:"name"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"-"`
	EmergencyContact string     `gorm:"not null" json:"emergency_contact"`
	Condition        string     `gorm:"not null" json:"condition"`
	DiagnosisDate    *time.Time `gorm:"type:date" json:"-"`
	Medications      []string   `gorm:"serializer:json" json:"medications"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

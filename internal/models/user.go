package models

import "time"

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Subject            string    `gorm:"uniqueIndex;not null" json:"subject"`
	Email              string    `gorm:"not null;default:''" json:"email"`
	Name               string    `gorm:"not null;default:''" json:"name"`
	Theme              string    `gorm:"not null;default:system" json:"theme"`
	EmailNotifications bool      `gorm:"not null;default:true" json:"email_notifications"`
	PushNotifications  bool      `gorm:"not null;default:true" json:"push_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

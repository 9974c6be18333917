package db

import (
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

func (repo *ReminderRepository) ListByUser(userID uint) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("date ASC, time ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) FindByIDForUser(reminderID uint, userID uint) (models.Reminder, bool, error) {
	reminder := models.Reminder{}
	result := repo.database.Where("id = ? AND user_id = ?", reminderID, userID).Limit(1).Find(&reminder)
	if result.Error != nil {
		return models.Reminder{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Reminder{}, false, nil
	}
	return reminder, true, nil
}

func (repo *ReminderRepository) Create(reminder *models.Reminder) error {
	return repo.database.Create(reminder).Error
}

func (repo *ReminderRepository) Save(reminder *models.Reminder) error {
	return repo.database.Save(reminder).Error
}

func (repo *ReminderRepository) Delete(reminder *models.Reminder) error {
	return repo.database.Delete(reminder).Error
}

// ListOpenUntil returns every incomplete reminder scheduled before dayEnd across all users.
func (repo *ReminderRepository) ListOpenUntil(dayEnd time.Time) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.
		Where("is_completed = ? AND date < ?", false, dayEnd).
		Order("date ASC, time ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) MarkNotified(reminderID uint, notifiedAt time.Time) error {
	return repo.database.Model(&models.Reminder{}).Where("id = ?", reminderID).Update("notified_at", notifiedAt).Error
}

package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindBySubject(subject string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("subject = ?", subject).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpsertBySubject creates the user on first sign-in and refreshes email and name afterwards.
func (repo *UserRepository) UpsertBySubject(subject string, email string, name string) (models.User, error) {
	var user models.User
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("subject = ?", subject).First(&user)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			user = models.User{
				Subject:            subject,
				Email:              email,
				Name:               name,
				Theme:              models.ThemeSystem,
				EmailNotifications: true,
				PushNotifications:  true,
			}
			return tx.Create(&user).Error
		}
		if result.Error != nil {
			return result.Error
		}

		if user.Email == email && user.Name == name {
			return nil
		}
		user.Email = email
		user.Name = name
		return tx.Model(&user).Updates(map[string]any{
			"email":      email,
			"name":       name,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) UpdateSettings(userID uint, theme string, emailNotifications bool, pushNotifications bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"theme":               theme,
		"email_notifications": emailNotifications,
		"push_notifications":  pushNotifications,
	}).Error
}

func (repo *UserRepository) DeleteAccountAndRelatedData(userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.DailyLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}

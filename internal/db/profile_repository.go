package db

import (
	"github.com/terraincognita07/patientlog/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByUser(userID uint) (models.Profile, bool, error) {
	profile := models.Profile{}
	result := repo.database.Where("user_id = ?", userID).Limit(1).Find(&profile)
	if result.Error != nil {
		return models.Profile{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Profile{}, false, nil
	}
	return profile, true, nil
}

// Upsert replaces every intake field of the user's profile, keeping its row identity.
func (repo *ProfileRepository) Upsert(profile *models.Profile) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		existing := models.Profile{}
		result := tx.Where("user_id = ?", profile.UserID).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(profile).Error
		}

		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		return tx.Save(profile).Error
	})
}

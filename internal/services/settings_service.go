package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

var (
	ErrInvalidTheme          = errors.New("invalid theme")
	ErrSettingsLoadFailed    = errors.New("load settings failed")
	ErrSettingsSaveFailed    = errors.New("save settings failed")
	ErrAccountPurgeFailed    = errors.New("purge account snapshots failed")
	ErrAccountDeletionFailed = errors.New("delete account failed")
)

type SettingsUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateSettings(userID uint, theme string, emailNotifications bool, pushNotifications bool) error
	DeleteAccountAndRelatedData(userID uint) error
}

type SnapshotPurger interface {
	Purge(ctx context.Context, subject string) error
}

type Settings struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	PushNotifications  bool   `json:"push_notifications"`
}

// SettingsPatch leaves nil fields unchanged.
type SettingsPatch struct {
	Theme              *string `json:"theme"`
	EmailNotifications *bool   `json:"email_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
}

type SettingsService struct {
	users  SettingsUserRepository
	purger SnapshotPurger
	cache  DashboardInvalidator
	logger *zap.Logger
}

func NewSettingsService(users SettingsUserRepository, purger SnapshotPurger, cache DashboardInvalidator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{users: users, purger: purger, cache: cache, logger: logger}
}

func SettingsFromUser(user models.User) Settings {
	return Settings{
		Theme:              user.Theme,
		EmailNotifications: user.EmailNotifications,
		PushNotifications:  user.PushNotifications,
	}
}

func NormalizeTheme(raw string) (string, error) {
	theme := strings.ToLower(strings.TrimSpace(raw))
	switch theme {
	case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
		return theme, nil
	default:
		return "", ErrInvalidTheme
	}
}

func (service *SettingsService) Get(user *models.User) (Settings, error) {
	stored, err := service.users.FindByID(user.ID)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsLoadFailed, err)
	}
	return SettingsFromUser(stored), nil
}

func (service *SettingsService) Update(user *models.User, patch SettingsPatch) (Settings, error) {
	stored, err := service.users.FindByID(user.ID)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsLoadFailed, err)
	}

	settings := SettingsFromUser(stored)
	if patch.Theme != nil {
		theme, err := NormalizeTheme(*patch.Theme)
		if err != nil {
			return Settings{}, err
		}
		settings.Theme = theme
	}
	if patch.EmailNotifications != nil {
		settings.EmailNotifications = *patch.EmailNotifications
	}
	if patch.PushNotifications != nil {
		settings.PushNotifications = *patch.PushNotifications
	}

	if err := service.users.UpdateSettings(user.ID, settings.Theme, settings.EmailNotifications, settings.PushNotifications); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsSaveFailed, err)
	}
	return settings, nil
}

// DeleteAccount removes snapshots before rows, so a failed purge leaves the account intact and retryable.
func (service *SettingsService) DeleteAccount(ctx context.Context, user *models.User) error {
	if service.purger != nil {
		if err := service.purger.Purge(ctx, user.Subject); err != nil {
			service.logger.Error("snapshot purge failed", zap.Uint("user_id", user.ID), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrAccountPurgeFailed, err)
		}
	}
	if err := service.users.DeleteAccountAndRelatedData(user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrAccountDeletionFailed, err)
	}
	if service.cache != nil {
		if err := service.cache.Invalidate(ctx, user.ID); err != nil {
			service.logger.Warn("dashboard cache invalidation failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

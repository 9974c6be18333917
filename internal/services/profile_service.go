package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileLoadFailed = errors.New("load profile failed")
	ErrProfileSaveFailed = errors.New("save profile failed")
)

type ProfileRepository interface {
	FindByUser(userID uint) (models.Profile, bool, error)
	Upsert(profile *models.Profile) error
}

type ProfileMirror interface {
	SaveProfile(ctx context.Context, subject string, profile models.Profile)
	LoadProfile(ctx context.Context, subject string) (models.Profile, bool, error)
}

// ProfileView is the API shape of a profile, with dates as YYYY-MM-DD.
type ProfileView struct {
	Name             string    `json:"name"`
	DateOfBirth      string    `json:"dob"`
	EmergencyContact string    `json:"emergency_contact"`
	Condition        string    `json:"condition"`
	DiagnosisDate    string    `json:"diagnosis_date"`
	Medications      []string  `json:"medications"`
	LastUpdated      time.Time `json:"last_updated"`
}

type ProfileService struct {
	profiles ProfileRepository
	mirror   ProfileMirror
	logger   *zap.Logger
}

func NewProfileService(profiles ProfileRepository, mirror ProfileMirror, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, mirror: mirror, logger: logger}
}

// Load reads the relational row, falling back to the stored snapshot.
// A snapshot hit is written back as a row so later reads stay relational.
func (service *ProfileService) Load(ctx context.Context, user *models.User) (ProfileView, error) {
	profile, found, err := service.profiles.FindByUser(user.ID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("%w: %v", ErrProfileLoadFailed, err)
	}
	if found {
		return NewProfileView(profile), nil
	}

	if service.mirror == nil {
		return ProfileView{}, ErrProfileNotFound
	}
	snapshot, found, err := service.mirror.LoadProfile(ctx, user.Subject)
	if err != nil {
		service.logger.Warn("profile snapshot fallback failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return ProfileView{}, ErrProfileNotFound
	}
	if !found {
		return ProfileView{}, ErrProfileNotFound
	}

	snapshot.UserID = user.ID
	if err := service.profiles.Upsert(&snapshot); err != nil {
		service.logger.Warn("profile backfill failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return NewProfileView(snapshot), nil
}

func (service *ProfileService) Exists(ctx context.Context, user *models.User) (bool, error) {
	_, err := service.Load(ctx, user)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (service *ProfileService) Save(ctx context.Context, user *models.User, input ProfileInput, now time.Time, location *time.Location) (ProfileView, error) {
	normalized, err := NormalizeProfileInput(input, CalendarDay(now, location))
	if err != nil {
		return ProfileView{}, err
	}

	profile := models.Profile{
		UserID:           user.ID,
		Name:             normalized.Name,
		DateOfBirth:      normalized.DateOfBirth,
		EmergencyContact: normalized.EmergencyContact,
		Condition:        normalized.Condition,
		DiagnosisDate:    normalized.DiagnosisDate,
		Medications:      normalized.Medications,
	}
	if err := service.profiles.Upsert(&profile); err != nil {
		return ProfileView{}, fmt.Errorf("%w: %v", ErrProfileSaveFailed, err)
	}

	if service.mirror != nil {
		service.mirror.SaveProfile(ctx, user.Subject, profile)
	}
	return NewProfileView(profile), nil
}

func NewProfileView(profile models.Profile) ProfileView {
	medications := profile.Medications
	if medications == nil {
		medications = []string{}
	}
	view := ProfileView{
		Name:             profile.Name,
		EmergencyContact: profile.EmergencyContact,
		Condition:        profile.Condition,
		Medications:      medications,
		LastUpdated:      profile.UpdatedAt,
	}
	if profile.DateOfBirth != nil {
		view.DateOfBirth = FormatDay(*profile.DateOfBirth)
	}
	if profile.DiagnosisDate != nil {
		view.DiagnosisDate = FormatDay(*profile.DiagnosisDate)
	}
	return view
}

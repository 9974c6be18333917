package api

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/patientlog/internal/cache"
	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/i18n"
	"github.com/terraincognita07/patientlog/internal/identity"
	"github.com/terraincognita07/patientlog/internal/services"
	"github.com/terraincognita07/patientlog/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

// TokenVerifier exchanges a provider access token for the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (identity.Claims, error)
}

type Options struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	I18n         *i18n.Manager
	Verifier     TokenVerifier
	Mirror       *storage.Mirror
	Cache        *cache.DashboardCache
	Logger       *zap.Logger
	Now          func() time.Time
}

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	cookieCodec  *secureCookieCodec
	i18n         *i18n.Manager
	verifier     TokenVerifier
	mirror       *storage.Mirror
	logger       *zap.Logger
	now          func() time.Time
	loginLimiter *attemptLimiter

	repositories     *db.Repositories
	authService      *services.AuthService
	profileService   *services.ProfileService
	dailyLogService  *services.DailyLogService
	reminderService  *services.ReminderService
	dashboardService *services.DashboardService
	exportService    *services.ExportService
	settingsService  *services.SettingsService
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	secretKey := []byte(options.SecretKey)
	codec, err := newSecureCookieCodec(secretKey)
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		secretKey:    secretKey,
		location:     options.Location,
		cookieSecure: options.CookieSecure,
		cookieCodec:  codec,
		i18n:         options.I18n,
		verifier:     options.Verifier,
		mirror:       options.Mirror,
		logger:       options.Logger.Named("api"),
		now:          options.Now,
		loginLimiter: newAttemptLimiter(),
	}
	return handler.withDependencies(database, options.Cache), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, dashboardCache *cache.DashboardCache) *Handler {
	repositories := db.NewRepositories(database)
	handler.repositories = repositories
	handler.authService = services.NewAuthService(repositories.Users)
	handler.profileService = services.NewProfileService(repositories.Profiles, handler.mirror, handler.logger)
	handler.dailyLogService = services.NewDailyLogService(repositories.DailyLogs, handler.mirror, dashboardCache, handler.logger)
	handler.reminderService = services.NewReminderService(repositories.Reminders)
	handler.dashboardService = services.NewDashboardService(repositories.DailyLogs, dashboardCache, handler.logger)
	handler.exportService = services.NewExportService(repositories.DailyLogs)
	handler.settingsService = services.NewSettingsService(repositories.Users, handler.mirror, dashboardCache, handler.logger)
	return handler
}

// clock returns the current instant in the configured timezone.
func (handler *Handler) clock() time.Time {
	return handler.now().In(handler.location)
}

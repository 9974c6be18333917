package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

const defaultLogWindowDays = 30

var (
	ErrDailyLogNotFound         = errors.New("daily log not found")
	ErrDailyLogLoadFailed       = errors.New("load daily log failed")
	ErrDailyLogSaveFailed       = errors.New("save daily log failed")
	ErrDailyLogDeleteFailed     = errors.New("delete daily log failed")
	ErrDailyLogSnapshotNotFound = errors.New("daily log snapshot not found")
	ErrDailyLogImportFailed     = errors.New("import daily logs failed")
)

type DailyLogRepository interface {
	ListByUser(userID uint) ([]models.DailyLog, error)
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error)
	FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error)
	Create(entry *models.DailyLog) error
	Save(entry *models.DailyLog) error
	DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (int64, error)
}

type DailyLogMirror interface {
	SaveDailyLogs(ctx context.Context, subject string, logs []models.DailyLog)
	LoadDailyLogs(ctx context.Context, subject string) ([]models.DailyLog, bool, error)
}

type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

type DailyLogImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type DailyLogService struct {
	logs   DailyLogRepository
	mirror DailyLogMirror
	cache  DashboardInvalidator
	logger *zap.Logger
}

func NewDailyLogService(logs DailyLogRepository, mirror DailyLogMirror, cache DashboardInvalidator, logger *zap.Logger) *DailyLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyLogService{logs: logs, mirror: mirror, cache: cache, logger: logger}
}

func (service *DailyLogService) Get(user *models.User, day time.Time) (models.DailyLog, error) {
	dayStart, dayEnd := DayRange(day)
	entry, found, err := service.logs.FindByUserAndDayRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("%w: %v", ErrDailyLogLoadFailed, err)
	}
	if !found {
		return models.DailyLog{}, ErrDailyLogNotFound
	}
	return entry, nil
}

// List returns entries newest first. Without bounds it covers the last 30 days up to today.
func (service *DailyLogService) List(user *models.User, from *time.Time, to *time.Time, now time.Time, location *time.Location) ([]models.DailyLog, error) {
	if from == nil && to == nil {
		today := CalendarDay(now, location)
		windowStart := today.AddDate(0, 0, -(defaultLogWindowDays - 1))
		from, to = &windowStart, &today
	}
	fromStart, toEnd := rangeBounds(from, to)
	logs, err := service.logs.ListByUserRange(user.ID, fromStart, toEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDailyLogLoadFailed, err)
	}
	return logs, nil
}

// Upsert writes the single entry for (user, day), replacing any previous entry for that day.
// The returned flag reports whether a new entry was created.
func (service *DailyLogService) Upsert(ctx context.Context, user *models.User, day time.Time, input DailyLogInput, now time.Time, location *time.Location) (models.DailyLog, bool, error) {
	dayStart, dayEnd := DayRange(day)
	if dayStart.After(CalendarDay(now, location)) {
		return models.DailyLog{}, false, ErrDailyLogDateInFuture
	}

	normalized, err := NormalizeDailyLogInput(input, now, location)
	if err != nil {
		return models.DailyLog{}, false, err
	}

	entry, created, err := service.writeEntry(user.ID, dayStart, dayEnd, normalized, now)
	if err != nil {
		return models.DailyLog{}, false, err
	}

	service.afterWrite(ctx, user)
	return entry, created, nil
}

func (service *DailyLogService) Delete(ctx context.Context, user *models.User, day time.Time) error {
	dayStart, dayEnd := DayRange(day)
	deleted, err := service.logs.DeleteByUserAndDayRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDailyLogDeleteFailed, err)
	}
	if deleted == 0 {
		return ErrDailyLogNotFound
	}

	service.afterWrite(ctx, user)
	return nil
}

// ImportCSV restores rows from the daily_logs.csv snapshot. Rows that fail
// validation are skipped; later rows for the same day win.
func (service *DailyLogService) ImportCSV(ctx context.Context, user *models.User, now time.Time, location *time.Location) (DailyLogImportResult, error) {
	if service.mirror == nil {
		return DailyLogImportResult{}, ErrDailyLogSnapshotNotFound
	}
	snapshot, found, err := service.mirror.LoadDailyLogs(ctx, user.Subject)
	if err != nil {
		service.logger.Warn("load daily log snapshot failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return DailyLogImportResult{}, fmt.Errorf("%w: %v", ErrDailyLogImportFailed, err)
	}
	if !found {
		return DailyLogImportResult{}, ErrDailyLogSnapshotNotFound
	}

	today := CalendarDay(now, location)
	result := DailyLogImportResult{}
	for _, row := range snapshot {
		dayStart, dayEnd := DayRange(row.Date)
		if dayStart.After(today) {
			result.Skipped++
			continue
		}

		loggedAt := row.LoggedAt
		if loggedAt.IsZero() {
			loggedAt = now
		}
		normalized, err := NormalizeDailyLogInput(dailyLogInputFromEntry(row), loggedAt, location)
		if err != nil {
			result.Skipped++
			continue
		}
		if _, _, err := service.writeEntry(user.ID, dayStart, dayEnd, normalized, loggedAt); err != nil {
			if result.Imported > 0 {
				service.afterWrite(ctx, user)
			}
			return result, fmt.Errorf("%w: %v", ErrDailyLogImportFailed, err)
		}
		result.Imported++
	}

	if result.Imported > 0 {
		service.afterWrite(ctx, user)
	}
	return result, nil
}

func (service *DailyLogService) writeEntry(userID uint, dayStart time.Time, dayEnd time.Time, input DailyLogInput, loggedAt time.Time) (models.DailyLog, bool, error) {
	entry, found, err := service.logs.FindByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return models.DailyLog{}, false, fmt.Errorf("%w: %v", ErrDailyLogLoadFailed, err)
	}

	if found {
		applyDailyLogInput(&entry, input, loggedAt)
		if err := service.logs.Save(&entry); err != nil {
			return models.DailyLog{}, false, fmt.Errorf("%w: %v", ErrDailyLogSaveFailed, err)
		}
		return entry, false, nil
	}

	entry = models.DailyLog{UserID: userID, Date: dayStart}
	applyDailyLogInput(&entry, input, loggedAt)
	if err := service.logs.Create(&entry); err != nil {
		return models.DailyLog{}, false, fmt.Errorf("%w: %v", ErrDailyLogSaveFailed, err)
	}
	return entry, true, nil
}

// afterWrite drops cached dashboards and re-uploads the full CSV snapshot.
// Neither step fails the request.
func (service *DailyLogService) afterWrite(ctx context.Context, user *models.User) {
	if service.cache != nil {
		if err := service.cache.Invalidate(ctx, user.ID); err != nil {
			service.logger.Warn("dashboard cache invalidation failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	if service.mirror == nil {
		return
	}
	logs, err := service.logs.ListByUser(user.ID)
	if err != nil {
		service.logger.Warn("load daily logs for snapshot failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	service.mirror.SaveDailyLogs(ctx, user.Subject, logs)
}

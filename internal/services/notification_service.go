package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"github.com/terraincognita07/patientlog/internal/notify"
	"go.uber.org/zap"
)

const DefaultReminderScanInterval = time.Minute

var ErrReminderScanFailed = errors.New("scan reminders failed")

type NotificationReminderRepository interface {
	ListOpenUntil(dayEnd time.Time) ([]models.Reminder, error)
	MarkNotified(reminderID uint, notifiedAt time.Time) error
}

type NotificationUserReader interface {
	FindByID(userID uint) (models.User, error)
}

type NotificationRunResult struct {
	Published  int
	Suppressed int
	Failed     int
}

// NotificationService publishes reminders once their date and time have passed.
type NotificationService struct {
	reminders NotificationReminderRepository
	users     NotificationUserReader
	publisher notify.Publisher
	location  *time.Location
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotificationService(reminders NotificationReminderRepository, users NotificationUserReader, publisher notify.Publisher, location *time.Location, interval time.Duration, logger *zap.Logger) *NotificationService {
	if location == nil {
		location = time.UTC
	}
	if interval <= 0 {
		interval = DefaultReminderScanInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		reminders: reminders,
		users:     users,
		publisher: publisher,
		location:  location,
		interval:  interval,
		logger:    logger.Named("notifier"),
		now:       time.Now,
	}
}

// Start scans once immediately and then on every tick until ctx is cancelled or Stop is called.
// Calling Start on a running service is a no-op.
func (service *NotificationService) Start(ctx context.Context) {
	service.mu.Lock()
	defer service.mu.Unlock()
	if service.done != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	service.cancel = cancel
	service.done = done

	go func() {
		defer close(done)
		service.Run(runCtx)
	}()
}

// Stop cancels the scan loop and waits for it to exit.
func (service *NotificationService) Stop() {
	service.mu.Lock()
	cancel, done := service.cancel, service.done
	service.cancel, service.done = nil, nil
	service.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run blocks until ctx is done.
func (service *NotificationService) Run(ctx context.Context) {
	ticker := time.NewTicker(service.interval)
	defer ticker.Stop()

	service.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			service.scan(ctx)
		}
	}
}

func (service *NotificationService) scan(ctx context.Context) {
	result, err := service.RunOnce(ctx, service.now())
	if err != nil {
		service.logger.Error("reminder scan failed", zap.Error(err))
		return
	}
	if result.Published > 0 || result.Failed > 0 {
		service.logger.Info("reminder scan finished",
			zap.Int("published", result.Published),
			zap.Int("suppressed", result.Suppressed),
			zap.Int("failed", result.Failed),
		)
	}
}

// RunOnce publishes every open reminder whose occurrence is due at now and has
// not been notified yet. Users with push notifications off are stamped without publishing.
func (service *NotificationService) RunOnce(ctx context.Context, now time.Time) (NotificationRunResult, error) {
	result := NotificationRunResult{}
	_, dayEnd := DayRange(CalendarDay(now, service.location))
	reminders, err := service.reminders.ListOpenUntil(dayEnd)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrReminderScanFailed, err)
	}

	users := make(map[uint]models.User)
	for _, reminder := range reminders {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		dueAt := ReminderDueAt(reminder, service.location)
		if dueAt.After(now) {
			continue
		}
		if reminder.NotifiedAt != nil && !reminder.NotifiedAt.Before(dueAt) {
			continue
		}

		user, ok := users[reminder.UserID]
		if !ok {
			user, err = service.users.FindByID(reminder.UserID)
			if err != nil {
				service.logger.Warn("reminder owner lookup failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
				result.Failed++
				continue
			}
			users[reminder.UserID] = user
		}

		if !user.PushNotifications {
			result.Suppressed++
		} else {
			if err := service.publisher.Publish(ctx, reminderMessage(reminder, dueAt)); err != nil {
				service.logger.Warn("reminder publish failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
				result.Failed++
				continue
			}
			result.Published++
		}

		if err := service.reminders.MarkNotified(reminder.ID, now.UTC()); err != nil {
			service.logger.Warn("reminder notified stamp failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
		}
	}
	return result, nil
}

func reminderMessage(reminder models.Reminder, dueAt time.Time) notify.Message {
	return notify.Message{
		ReminderID: reminder.ID,
		UserID:     reminder.UserID,
		Type:       reminder.Type,
		Text:       reminder.Text,
		Date:       FormatDay(reminder.Date),
		Time:       reminder.Time,
		DueAt:      dueAt.UTC(),
		Recurring:  reminder.IsRecurring,
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"github.com/terraincognita07/patientlog/internal/notify"
	"go.uber.org/goleak"
)

type notificationRepoStub struct {
	mu        sync.Mutex
	reminders []models.Reminder
	notified  map[uint]time.Time
	dayEnds   []time.Time
}

func (stub *notificationRepoStub) ListOpenUntil(dayEnd time.Time) ([]models.Reminder, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.dayEnds = append(stub.dayEnds, dayEnd)
	result := make([]models.Reminder, 0, len(stub.reminders))
	for _, reminder := range stub.reminders {
		if !reminder.IsCompleted && reminder.Date.Before(dayEnd) {
			result = append(result, reminder)
		}
	}
	return result, nil
}

func (stub *notificationRepoStub) MarkNotified(reminderID uint, notifiedAt time.Time) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.notified[reminderID] = notifiedAt
	for index := range stub.reminders {
		if stub.reminders[index].ID == reminderID {
			stamp := notifiedAt
			stub.reminders[index].NotifiedAt = &stamp
		}
	}
	return nil
}

func (stub *notificationRepoStub) scans() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return len(stub.dayEnds)
}

type notificationUsersStub struct {
	users map[uint]models.User
}

func (stub *notificationUsersStub) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, errors.New("record not found")
	}
	return user, nil
}

type publisherStub struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (stub *publisherStub) Publish(_ context.Context, message notify.Message) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.err != nil {
		return stub.err
	}
	stub.messages = append(stub.messages, message)
	return nil
}

func (stub *publisherStub) Close() {}

func newNotificationFixture(t *testing.T) (*notificationRepoStub, *publisherStub, *NotificationService) {
	t.Helper()
	repo := &notificationRepoStub{
		notified: make(map[uint]time.Time),
		reminders: []models.Reminder{
			{ID: 1, UserID: 1, Type: models.ReminderTypeMedication, Date: mustDay(t, "2026-04-20"), Time: "09:00", Text: "Ibuprofen"},
			{ID: 2, UserID: 1, Type: models.ReminderTypeAppointment, Date: mustDay(t, "2026-04-20"), Time: "18:00"},
			{ID: 3, UserID: 2, Type: models.ReminderTypeLogEntry, Date: mustDay(t, "2026-04-19"), Time: "21:00"},
			{ID: 4, UserID: 1, Type: models.ReminderTypeOther, Date: mustDay(t, "2026-04-18"), Time: "10:00", IsCompleted: true},
		},
	}
	users := &notificationUsersStub{users: map[uint]models.User{
		1: {ID: 1, PushNotifications: true},
		2: {ID: 2, PushNotifications: false},
	}}
	publisher := &publisherStub{}
	service := NewNotificationService(repo, users, publisher, time.UTC, time.Hour, nil)
	return repo, publisher, service
}

func TestNotificationRunOncePublishesDueReminders(t *testing.T) {
	repo, publisher, service := newNotificationFixture(t)

	result, err := service.RunOnce(context.Background(), dailyLogTestNow)
	if err != nil {
		t.Fatalf("RunOnce() unexpected error: %v", err)
	}
	if result.Published != 1 || result.Suppressed != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
	if len(publisher.messages) != 1 || publisher.messages[0].ReminderID != 1 || publisher.messages[0].Text != "Ibuprofen" {
		t.Fatalf("unexpected messages %#v", publisher.messages)
	}
	if _, ok := repo.notified[1]; !ok {
		t.Fatal("expected published reminder to be stamped")
	}
	if _, ok := repo.notified[3]; !ok {
		t.Fatal("expected suppressed reminder to be stamped")
	}
	if _, ok := repo.notified[2]; ok {
		t.Fatal("reminder due later today must not be stamped")
	}

	again, err := service.RunOnce(context.Background(), dailyLogTestNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("RunOnce() unexpected error: %v", err)
	}
	if again.Published != 0 || len(publisher.messages) != 1 {
		t.Fatalf("expected no repeat notification, got %#v", again)
	}
}

func TestNotificationRunOnceRenotifiesRolledOccurrence(t *testing.T) {
	repo, publisher, service := newNotificationFixture(t)
	previous := time.Date(2026, 4, 13, 9, 0, 0, 0, time.UTC)
	repo.reminders = []models.Reminder{{
		ID: 9, UserID: 1, Type: models.ReminderTypeMedication, Date: mustDay(t, "2026-04-20"), Time: "09:00",
		IsRecurring: true, Recurrence: models.RecurrenceWeekly, NotifiedAt: &previous,
	}}

	if _, err := service.RunOnce(context.Background(), dailyLogTestNow); err != nil {
		t.Fatalf("RunOnce() unexpected error: %v", err)
	}
	if len(publisher.messages) != 1 || !publisher.messages[0].Recurring {
		t.Fatalf("expected the new occurrence to publish, got %#v", publisher.messages)
	}
}

func TestNotificationRunOnceLeavesFailedPublishUnstamped(t *testing.T) {
	repo, publisher, service := newNotificationFixture(t)
	publisher.err = errors.New("broker down")

	result, err := service.RunOnce(context.Background(), dailyLogTestNow)
	if err != nil {
		t.Fatalf("RunOnce() unexpected error: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected one failure, got %#v", result)
	}
	if _, ok := repo.notified[1]; ok {
		t.Fatal("failed publish must stay eligible for retry")
	}
}

func TestNotificationStartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, _, service := newNotificationFixture(t)
	service.now = func() time.Time { return dailyLogTestNow }

	service.Start(context.Background())
	service.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for repo.scans() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	service.Stop()
	service.Stop()

	if repo.scans() == 0 {
		t.Fatal("expected an initial scan after Start")
	}
}

func TestNotificationRunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, service := newNotificationFixture(t)
	service.now = func() time.Time { return dailyLogTestNow }
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Run(ctx)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

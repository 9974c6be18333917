package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Message is the payload published when a reminder falls due.
type Message struct {
	ReminderID uint      `json:"reminder_id"`
	UserID     uint      `json:"user_id"`
	Type       string    `json:"type"`
	Text       string    `json:"text"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	DueAt      time.Time `json:"due_at"`
	Recurring  bool      `json:"recurring"`
}

type Publisher interface {
	Publish(ctx context.Context, message Message) error
	Close()
}

// LogPublisher writes due reminders to the service log. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.Named("reminders")}
}

func (publisher *LogPublisher) Publish(_ context.Context, message Message) error {
	publisher.logger.Info("reminder due",
		zap.Uint("reminder_id", message.ReminderID),
		zap.Uint("user_id", message.UserID),
		zap.String("type", message.Type),
		zap.String("date", message.Date),
		zap.String("time", message.Time),
		zap.String("text", message.Text),
	)
	return nil
}

func (publisher *LogPublisher) Close() {}

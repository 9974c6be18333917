package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/terraincognita07/patientlog/internal/config"
	"go.uber.org/zap"
)

const (
	publishQoS        = 1
	defaultPublishTTL = 10 * time.Second
	disconnectQuiesce = 250
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTPublisher sends reminder messages to <topic>/<user id>.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

func NewMQTTPublisher(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("mqtt broker is required")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}

	return newMQTTPublisherWithClient(client, cfg.Topic, logger), nil
}

func newMQTTPublisherWithClient(client mqtt.Client, topic string, logger *zap.Logger) *MQTTPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTTPublisher{
		client: client,
		topic:  strings.TrimRight(strings.TrimSpace(topic), "/"),
		logger: logger.Named("mqtt"),
	}
}

func (publisher *MQTTPublisher) Publish(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode reminder message: %w", err)
	}

	topic := fmt.Sprintf("%s/%d", publisher.topic, message.UserID)
	token := publisher.client.Publish(topic, publishQoS, false, payload)

	wait := defaultPublishTTL
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	publisher.logger.Debug("reminder published", zap.String("topic", topic), zap.Uint("reminder_id", message.ReminderID))
	return nil
}

func (publisher *MQTTPublisher) Close() {
	publisher.client.Disconnect(disconnectQuiesce)
}

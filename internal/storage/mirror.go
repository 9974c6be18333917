package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

// Mirror keeps per-subject snapshots in a BlobStore next to the relational rows.
// Writes are best effort: failures are logged and never returned to the caller.
type Mirror struct {
	store  BlobStore
	logger *zap.Logger
	now    func() time.Time
}

func NewMirror(store BlobStore, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		store:  store,
		logger: logger.Named("mirror"),
		now:    time.Now,
	}
}

func (mirror *Mirror) Enabled() bool {
	return mirror != nil && mirror.store != nil
}

func (mirror *Mirror) SaveProfile(ctx context.Context, subject string, profile models.Profile) {
	if !mirror.Enabled() {
		return
	}
	payload, err := EncodeProfileJSON(profile, mirror.now())
	if err != nil {
		mirror.logger.Error("encode profile snapshot", zap.String("subject", subject), zap.Error(err))
		return
	}
	mirror.put(ctx, ProfileKey(subject), payload, ContentTypeJSON)
}

func (mirror *Mirror) SaveDailyLogs(ctx context.Context, subject string, logs []models.DailyLog) {
	if !mirror.Enabled() {
		return
	}
	payload, err := EncodeDailyLogsCSV(logs)
	if err != nil {
		mirror.logger.Error("encode daily logs snapshot", zap.String("subject", subject), zap.Error(err))
		return
	}
	mirror.put(ctx, DailyLogsKey(subject), payload, ContentTypeCSV)
}

func (mirror *Mirror) LoadProfile(ctx context.Context, subject string) (models.Profile, bool, error) {
	payload, found, err := mirror.load(ctx, ProfileKey(subject))
	if err != nil || !found {
		return models.Profile{}, false, err
	}
	profile, _, err := DecodeProfileJSON(payload)
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func (mirror *Mirror) LoadDailyLogs(ctx context.Context, subject string) ([]models.DailyLog, bool, error) {
	payload, found, err := mirror.load(ctx, DailyLogsKey(subject))
	if err != nil || !found {
		return nil, false, err
	}
	logs, err := DecodeDailyLogsCSV(payload)
	if err != nil {
		return nil, false, err
	}
	return logs, true, nil
}

// Raw returns the stored snapshot bytes for one of the subject's files.
func (mirror *Mirror) Raw(ctx context.Context, subject string, file string) ([]byte, error) {
	if !mirror.Enabled() {
		return nil, ErrBlobNotFound
	}
	return mirror.store.Get(ctx, subjectKey(subject, file))
}

// Purge removes every blob stored for the subject.
func (mirror *Mirror) Purge(ctx context.Context, subject string) error {
	if !mirror.Enabled() {
		return nil
	}
	keys, err := mirror.store.List(ctx, subjectKey(subject, ""))
	if err != nil {
		return fmt.Errorf("list subject blobs: %w", err)
	}
	for _, key := range keys {
		if err := mirror.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("delete blob %s: %w", key, err)
		}
	}
	return nil
}

func (mirror *Mirror) put(ctx context.Context, key string, payload []byte, contentType string) {
	if err := mirror.store.Put(ctx, key, payload, contentType); err != nil {
		mirror.logger.Warn("snapshot upload failed", zap.String("key", key), zap.Error(err))
	}
}

func (mirror *Mirror) load(ctx context.Context, key string) ([]byte, bool, error) {
	if !mirror.Enabled() {
		return nil, false, nil
	}
	payload, err := mirror.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

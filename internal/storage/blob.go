package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	ProfileFile   = "patient_profile.json"
	DailyLogsFile = "daily_logs.csv"

	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

// BlobStore is an object store addressed by slash-separated keys. Put overwrites.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

func ProfileKey(subject string) string {
	return subjectKey(subject, ProfileFile)
}

func DailyLogsKey(subject string) string {
	return subjectKey(subject, DailyLogsFile)
}

func subjectKey(subject string, file string) string {
	return strings.TrimSpace(subject) + "/" + file
}

func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") || strings.Contains(trimmed, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

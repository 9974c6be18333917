package storage

import (
	"fmt"
	"strings"

	"github.com/terraincognita07/patientlog/internal/config"
	"go.uber.org/zap"
)

const (
	BackendFilesystem = "filesystem"
	BackendSupabase   = "supabase"
)

func New(cfg config.StorageConfig, logger *zap.Logger) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendFilesystem, "":
		return NewFilesystemStore(cfg.Dir)
	case BackendSupabase:
		return NewSupabaseStore(cfg.URL, cfg.Key, cfg.Bucket, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/config"
	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/logging"
	"github.com/terraincognita07/patientlog/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Runtime holds what every command needs: config, logger, database and the blob mirror.
type Runtime struct {
	Config   config.Config
	Logger   *zap.Logger
	Database *gorm.DB
	Mirror   *storage.Mirror
	Location *time.Location
}

func OpenRuntime(configPath string) (*Runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, "patientlog")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		closeDatabase(database)
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Database: database,
		Mirror:   storage.NewMirror(store, logger),
		Location: LoadLocation(cfg.Timezone, logger),
	}, nil
}

func (runtime *Runtime) Close() {
	closeDatabase(runtime.Database)
	_ = runtime.Logger.Sync()
}

// LoadLocation falls back to UTC for unknown zone names.
func LoadLocation(name string, logger *zap.Logger) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", name))
		return time.UTC
	}
	return location
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

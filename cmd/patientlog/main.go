package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/patientlog/internal/api"
	"github.com/terraincognita07/patientlog/internal/cache"
	"github.com/terraincognita07/patientlog/internal/cli"
	"github.com/terraincognita07/patientlog/internal/config"
	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/i18n"
	"github.com/terraincognita07/patientlog/internal/identity"
	"github.com/terraincognita07/patientlog/internal/notify"
	"github.com/terraincognita07/patientlog/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	configPath := os.Getenv("PATIENTLOG_CONFIG")

	root := &cobra.Command{
		Use:           "patientlog",
		Short:         "Patient recovery log service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "path to a YAML config file")

	root.AddCommand(
		newServeCommand(&configPath),
		cli.NewExportCommand(&configPath),
		cli.NewPurgeCommand(&configPath),
	)
	return root
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder notifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	runtime, err := cli.OpenRuntime(configPath)
	if err != nil {
		return err
	}
	defer runtime.Close()

	cfg := runtime.Config
	logger := runtime.Logger

	scanInterval, err := parseScanInterval(cfg.Reminders.ScanInterval)
	if err != nil {
		return err
	}

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	dashboardCache := openDashboardCache(ctx, cfg.Redis, logger)
	defer func() {
		if err := dashboardCache.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}()
	publisher := openPublisher(cfg.MQTT, logger)
	defer publisher.Close()

	handler, err := api.NewHandler(runtime.Database, api.Options{
		SecretKey:    cfg.SecretKey,
		Location:     runtime.Location,
		CookieSecure: cfg.CookieSecure,
		I18n:         i18nManager,
		Verifier:     identity.NewVerifier(cfg.Identity.UserInfoURL, logger),
		Mirror:       runtime.Mirror,
		Cache:        dashboardCache,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler, api.AppOptions{AccessLog: true})

	repositories := db.NewRepositories(runtime.Database)
	notifier := services.NewNotificationService(repositories.Reminders, repositories.Users, publisher, runtime.Location, scanInterval, logger)

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	group, groupCtx := errgroup.WithContext(sigCtx)

	group.Go(func() error {
		notifier.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		logger.Info("patientlog listening",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("tz", runtime.Location.String()),
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return errors.New("server stopped")
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
		return nil
	})

	err = group.Wait()
	if sigCtx.Err() != nil {
		logger.Info("patientlog stopped")
		return nil
	}
	return err
}

func parseScanInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.DefaultReminderScanInterval, nil
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		return 0, fmt.Errorf("invalid reminder scan interval %q", raw)
	}
	return interval, nil
}

// openDashboardCache returns nil when Redis is not configured or not reachable.
func openDashboardCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *cache.DashboardCache {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil
	}

	ttl, err := cache.ParseTTL(cfg.TTL)
	if err != nil {
		logger.Warn("invalid redis ttl, using default", zap.Error(err))
		ttl = 0
	}

	client := cache.NewRedisClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, client); err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return cache.NewDashboardCache(client, ttl)
}

// openPublisher prefers MQTT and falls back to the log publisher.
func openPublisher(cfg config.MQTTConfig, logger *zap.Logger) notify.Publisher {
	if strings.TrimSpace(cfg.Broker) == "" {
		return notify.NewLogPublisher(logger)
	}
	publisher, err := notify.NewMQTTPublisher(cfg, logger)
	if err != nil {
		logger.Warn("mqtt unavailable, logging reminders instead", zap.String("broker", cfg.Broker), zap.Error(err))
		return notify.NewLogPublisher(logger)
	}
	return publisher
}

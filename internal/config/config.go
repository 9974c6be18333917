package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

var (
	ErrSecretKeyMissing  = errors.New("SECRET_KEY is required")
	ErrSecretKeyInsecure = errors.New("SECRET_KEY uses an insecure placeholder")
	ErrSecretKeyTooShort = errors.New("SECRET_KEY must be at least 32 characters")
	ErrInvalidPort       = errors.New("PORT must be a number between 1 and 65535")
)

type Config struct {
	Port            string          `yaml:"port"`
	SecretKey       string          `yaml:"secret_key"`
	Timezone        string          `yaml:"timezone"`
	CookieSecure    bool            `yaml:"cookie_secure"`
	DefaultLanguage string          `yaml:"default_language"`
	Database        DatabaseConfig  `yaml:"database"`
	Storage         StorageConfig   `yaml:"storage"`
	Identity        IdentityConfig  `yaml:"identity"`
	Redis           RedisConfig     `yaml:"redis"`
	MQTT            MQTTConfig      `yaml:"mqtt"`
	Logging         LoggingConfig   `yaml:"logging"`
	Reminders       RemindersConfig `yaml:"reminders"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // filesystem, supabase
	Dir     string `yaml:"dir"`
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
	Bucket  string `yaml:"bucket"`
}

type IdentityConfig struct {
	UserInfoURL string `yaml:"userinfo_url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RemindersConfig struct {
	ScanInterval string `yaml:"scan_interval"`
}

func Default() Config {
	return Config{
		Port:            "8080",
		Timezone:        "UTC",
		DefaultLanguage: "en",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join("data", "patientlog.db"),
		},
		Storage: StorageConfig{
			Backend: "filesystem",
			Dir:     filepath.Join("data", "blobs"),
			Bucket:  "patient-data",
		},
		Redis: RedisConfig{
			TTL: "10m",
		},
		MQTT: MQTTConfig{
			ClientID: "patientlog",
			Topic:    "patientlog/reminders",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Reminders: RemindersConfig{
			ScanInterval: "1m",
		},
	}
}

// Load reads the optional YAML file at path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.SecretKey, "SECRET_KEY")
	overrideString(&cfg.Timezone, "TZ")
	overrideBool(&cfg.CookieSecure, "COOKIE_SECURE")
	overrideString(&cfg.DefaultLanguage, "DEFAULT_LANGUAGE")

	overrideString(&cfg.Database.Driver, "DB_DRIVER")
	overrideString(&cfg.Database.DSN, "DB_PATH")
	overrideString(&cfg.Database.DSN, "DB_DSN")

	overrideString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	overrideString(&cfg.Storage.Dir, "STORAGE_DIR")
	overrideString(&cfg.Storage.URL, "STORAGE_URL")
	overrideString(&cfg.Storage.Key, "STORAGE_KEY")
	overrideString(&cfg.Storage.Bucket, "STORAGE_BUCKET")

	overrideString(&cfg.Identity.UserInfoURL, "IDENTITY_USERINFO_URL")

	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideInt(&cfg.Redis.DB, "REDIS_DB")

	overrideString(&cfg.MQTT.Broker, "MQTT_BROKER")
	overrideString(&cfg.MQTT.ClientID, "MQTT_CLIENT_ID")
	overrideString(&cfg.MQTT.Username, "MQTT_USERNAME")
	overrideString(&cfg.MQTT.Password, "MQTT_PASSWORD")
	overrideString(&cfg.MQTT.Topic, "MQTT_TOPIC")

	overrideString(&cfg.Logging.Level, "LOG_LEVEL")
	overrideString(&cfg.Logging.Format, "LOG_FORMAT")
}

func (cfg Config) Validate() error {
	if _, err := ResolveSecretKey(cfg.SecretKey); err != nil {
		return err
	}
	if _, err := ResolvePort(cfg.Port); err != nil {
		return err
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database dsn is required")
	}

	switch cfg.Storage.Backend {
	case "filesystem":
		if strings.TrimSpace(cfg.Storage.Dir) == "" {
			return errors.New("storage dir is required for filesystem backend")
		}
	case "supabase":
		if strings.TrimSpace(cfg.Storage.URL) == "" || strings.TrimSpace(cfg.Storage.Key) == "" {
			return errors.New("storage url and key are required for supabase backend")
		}
		if strings.TrimSpace(cfg.Storage.Bucket) == "" {
			return errors.New("storage bucket is required for supabase backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

func ResolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", ErrSecretKeyInsecure
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func ResolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", ErrInvalidPort
	}
	return port, nil
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func overrideBool(target *bool, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if parsed, err := strconv.ParseBool(raw); err == nil {
		*target = parsed
	}
}

func overrideInt(target *int, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if parsed, err := strconv.Atoi(raw); err == nil {
		*target = parsed
	}
}

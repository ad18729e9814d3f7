package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	Env         string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string

	KafkaBrokers []string
	KafkaTopic   string

	// NotifyOnCreate also emits a notification when checkout creates an
	// order in its initial status.
	NotifyOnCreate        bool
	NotificationQueueSize int
	NotificationTimeout   time.Duration
}

// Load reads configuration from environment variables. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Addr:                  getenv("PET_SHOP_ADDR", ":8080"),
		Env:                   getenv("APP_ENV", "production"),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		CORSOrigins:           getenv("CORS_ALLOW_ORIGINS", "*"),
		KafkaBrokers:          splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:            getenv("KAFKA_TOPIC", "orders.status-changed"),
		NotificationQueueSize: 256,
		NotificationTimeout:   5 * time.Second,
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}

	if v := os.Getenv("NOTIFY_ON_CREATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("NOTIFY_ON_CREATE: %w", err)
		}
		cfg.NotifyOnCreate = b
	}
	if v := os.Getenv("NOTIFICATION_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be a positive integer, got %q", v)
		}
		cfg.NotificationQueueSize = n
	}
	if v := os.Getenv("NOTIFICATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("NOTIFICATION_TIMEOUT: %w", err)
		}
		cfg.NotificationTimeout = d
	}

	return cfg, nil
}

// Development reports whether human-friendly logging should be used.
func (c Config) Development() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

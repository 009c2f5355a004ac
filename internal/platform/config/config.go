package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	// PostgresDSN wins over SQLitePath; with neither set the engine runs on the
	// memory store.
	PostgresDSN string
	SQLitePath  string

	RedisAddr string
	LockTTL   time.Duration

	NATSURL            string
	OutboxTopic        string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	SeedPath string
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	pollInterval, err := envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	lockTTL, err := envDuration("LOCK_TTL", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	batchSize, err := envInt("OUTBOX_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName:        envString("SERVICE_NAME", "compliance-engine"),
		HTTPPort:           envString("HTTP_PORT", "8080"),
		PostgresDSN:        envString("POSTGRES_DSN", ""),
		SQLitePath:         envString("SQLITE_PATH", ""),
		RedisAddr:          envString("REDIS_ADDR", ""),
		LockTTL:            lockTTL,
		NATSURL:            envString("NATS_URL", ""),
		OutboxTopic:        envString("OUTBOX_TOPIC", "compliance.events"),
		OutboxPollInterval: pollInterval,
		OutboxBatchSize:    batchSize,
		SeedPath:           envString("SEED_PATH", ""),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", name, raw)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return value, nil
}

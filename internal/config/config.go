package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Push transport (FCM legacy HTTP API)
	FCMEndpoint  string
	FCMServerKey string
	PushTimeout  time.Duration

	// Outbound push rate limit, sends per second
	PushRateLimit int

	// Dispatcher: poll interval and per-cycle batch bound
	DispatchInterval  time.Duration
	DispatchBatchSize int

	// Retry sweep: poll interval and per-sweep reset bound
	RetryInterval time.Duration
	RetryLimit    int
}

func Load() (*Config, error) {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		FCMEndpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey: getEnv("FCM_SERVER_KEY", ""),
		PushTimeout:  getDuration("PUSH_TIMEOUT", 10*time.Second),

		PushRateLimit: getInt("PUSH_RATE_LIMIT", 100),

		DispatchInterval:  getDuration("DISPATCH_INTERVAL", 30*time.Second),
		DispatchBatchSize: getInt("DISPATCH_BATCH_SIZE", 50),

		RetryInterval: getDuration("RETRY_INTERVAL", 5*time.Minute),
		RetryLimit:    getInt("RETRY_LIMIT", 20),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// SyncTimeout bounds one full mailbox sync pass (connect + fetch + process).
	SyncTimeout time.Duration
	// ConnectTimeout bounds the IMAP dial/login handshake.
	ConnectTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	syncTimeout := 2 * time.Minute
	if v := os.Getenv("MAIL_SYNC_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			syncTimeout = parsed
		}
	}

	connectTimeout := 30 * time.Second
	if v := os.Getenv("MAIL_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			connectTimeout = parsed
		}
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=topcitylight port=5432 sslmode=disable"),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		SyncTimeout:    syncTimeout,
		ConnectTimeout: connectTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

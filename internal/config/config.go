// Package config loads server configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server binary needs.
type Config struct {
	// HTTPAddr is the listen address for the HTTP server (WebSocket + REST).
	HTTPAddr string
	// TCPAddr enables the plain TCP transport when non-empty.
	TCPAddr string
	// DBPath is the SQLite database file, or ":memory:".
	DBPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is json or console.
	LogFormat string
	// AllowedOrigins restricts CORS; "*" allows every origin.
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file is honored when
// present; missing values fall back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:       getenv("CHAT_HTTP_ADDR", ":3001"),
		TCPAddr:        os.Getenv("CHAT_TCP_ADDR"),
		DBPath:         getenv("CHAT_DB_PATH", "data/chat.db"),
		LogLevel:       getenv("CHAT_LOG_LEVEL", "info"),
		LogFormat:      getenv("CHAT_LOG_FORMAT", "console"),
		AllowedOrigins: splitList(getenv("CHAT_ALLOWED_ORIGINS", "*")),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

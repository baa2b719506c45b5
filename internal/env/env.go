// Package env provides centralized environment variable management.
package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration from environment variables.
type Config struct {
	// Server configuration
	Port      string
	RateLimit int
	JWTSecret string

	// Discord bot configuration
	DiscordToken string
	DiscordAppID string

	// CLI/TUI configuration
	BaseURL string

	// Matchmaking / room timing (all spec.md §6 Configuration fields)
	QueueWait         time.Duration
	ReconnectGrace    time.Duration
	InactivityTimeout time.Duration
	ChatPostGameTTL   time.Duration
	ReadyPingTimeout  time.Duration

	// Shared-store wiring
	RedisURL        string
	RedisRequired   bool
	RedisKeyPrefix  string
	SQLitePath      string
	SQLiteRequired  bool
	EventRetention  int // days
}

// LoadServerConfig loads configuration required for the HTTP/WS server.
func LoadServerConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		RateLimit: getEnvAsIntOrDefault("RATE_LIMIT", 20),
		JWTSecret: getEnvOrDefault("JWT_SECRET", "secret"),

		QueueWait:         getEnvAsMillisOrDefault("QUEUE_WAIT_MS", 60000),
		ReconnectGrace:    getEnvAsMillisOrDefault("RECONNECT_GRACE_MS", 30000),
		InactivityTimeout: getEnvAsMillisOrDefault("INACTIVITY_TIMEOUT_MS", 120000),
		ChatPostGameTTL:   getEnvAsMillisOrDefault("CHAT_POST_GAME_TTL_MS", 60000),
		ReadyPingTimeout:  getEnvAsMillisOrDefault("READY_PING_TIMEOUT_MS", 10000),

		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		RedisRequired:  getEnvAsBoolOrDefault("REDIS_REQUIRED", false),
		RedisKeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "battleship:"),

		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "./events.db"),
		SQLiteRequired: getEnvAsBoolOrDefault("SQLITE_REQUIRED", false),
		EventRetention: getEnvAsIntOrDefault("EVENT_RETENTION_DAYS", 30),
	}

	return cfg, nil
}

// LoadBotConfig loads configuration required for the Discord relay.
func LoadBotConfig() (*Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}

	appID := os.Getenv("DISCORD_APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID environment variable is required")
	}

	cfg := &Config{
		DiscordToken: token,
		DiscordAppID: appID,
		JWTSecret:    getEnvOrDefault("JWT_SECRET", "secret"),
		BaseURL:      getEnvOrDefault("BASE_URL", "http://localhost:8080"),
	}

	return cfg, nil
}

// LoadClientConfig loads configuration required for the CLI/TUI client.
func LoadClientConfig() (*Config, error) {
	cfg := &Config{
		BaseURL: getEnvOrDefault("BASE_URL", "http://localhost:8080"),
	}

	return cfg, nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsMillisOrDefault(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvAsIntOrDefault(key, defaultMs)) * time.Millisecond
}

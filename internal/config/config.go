// Package config provides configuration management for the application
package config

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig holds Redis/Valkey configuration
type RedisConfig struct {
	Enabled bool
	// URI is prioritized if provided, otherwise individual connection parameters are used
	URI       string
	Host      string
	Port      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// FocusConfig holds the focus room runtime settings
type FocusConfig struct {
	// HeartbeatInterval is how often a running session flushes its value
	// into shared presence state; writes never exceed one per interval
	HeartbeatInterval time.Duration
	// SweepInterval is how often the reaper scans for empty forever rooms
	SweepInterval time.Duration
	// PresenceStaleAfter is how long a presence record may go without a
	// heartbeat before the reaper treats its member as gone
	PresenceStaleAfter time.Duration
	// Port the presentation-layer HTTP adapter listens on
	Port string
}

// GetRedisConfig loads Redis/Valkey configuration from environment variables
func GetRedisConfig() RedisConfig {
	// Parse DB index
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return RedisConfig{
		Enabled:   getEnvBool("REDIS_ENABLED", false),
		URI:       getEnv("REDIS_URI_FOCUS", ""),
		Host:      getEnv("REDIS_HOST_FOCUS", getEnv("REDIS_ADDRESS", "localhost")),
		Port:      getEnv("REDIS_PORT_FOCUS", "6379"),
		Username:  getEnv("REDIS_USERNAME_FOCUS", ""),
		Password:  getEnv("REDIS_PASSWORD_FOCUS", getEnv("REDIS_PASSWORD", "")),
		DB:        db,
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "focus:"),
	}
}

// GetFocusConfig loads focus room settings from environment variables
func GetFocusConfig() FocusConfig {
	return FocusConfig{
		HeartbeatInterval:  getEnvDuration("FOCUS_HEARTBEAT_INTERVAL", time.Second),
		SweepInterval:      getEnvDuration("FOCUS_SWEEP_INTERVAL", 30*time.Second),
		PresenceStaleAfter: getEnvDuration("FOCUS_PRESENCE_STALE_AFTER", 90*time.Second),
		Port:               getEnv("PORT", "8080"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration retrieves a duration environment variable (e.g. "30s", "2m")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

package config_test

import (
	"testing"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGetFocusConfigDefaults(t *testing.T) {
	cfg := config.GetFocusConfig()

	assert.Equal(t, time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 90*time.Second, cfg.PresenceStaleAfter)
	assert.NotEmpty(t, cfg.Port)
}

func TestGetFocusConfigFromEnv(t *testing.T) {
	t.Setenv("FOCUS_HEARTBEAT_INTERVAL", "2s")
	t.Setenv("FOCUS_SWEEP_INTERVAL", "1m")
	t.Setenv("FOCUS_PRESENCE_STALE_AFTER", "not-a-duration")

	cfg := config.GetFocusConfig()

	assert.Equal(t, 2*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 90*time.Second, cfg.PresenceStaleAfter, "invalid durations fall back to the default")
}

func TestGetRedisConfigDefaults(t *testing.T) {
	cfg := config.GetRedisConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "focus:", cfg.KeyPrefix)
	assert.Equal(t, "6379", cfg.Port)
}

func TestGetRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URI_FOCUS", "redis://localhost:6380")
	t.Setenv("REDIS_KEY_PREFIX", "aurora:")

	cfg := config.GetRedisConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "redis://localhost:6380", cfg.URI)
	assert.Equal(t, "aurora:", cfg.KeyPrefix)
}

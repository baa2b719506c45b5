package env_test

import (
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := env.LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReconnectGrace)
	assert.Equal(t, 120*time.Second, cfg.InactivityTimeout)
	assert.Equal(t, 60*time.Second, cfg.ChatPostGameTTL)
}

func TestLoadServerConfigHonorsOverrides(t *testing.T) {
	t.Setenv("RECONNECT_GRACE_MS", "5000")
	t.Setenv("REDIS_REQUIRED", "true")

	cfg, err := env.LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ReconnectGrace)
	assert.True(t, cfg.RedisRequired)
}

func TestLoadBotConfigRequiresDiscordToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_APP_ID", "")

	_, err := env.LoadBotConfig()
	assert.Error(t, err)
}

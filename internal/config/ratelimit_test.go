package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Minute, cfg.RefillInterval)
	// the TTL never falls below five refill windows
	assert.Equal(t, 10*time.Minute, cfg.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SOME_FLAG", "yes")
	assert.True(t, envBool("SOME_FLAG", false))

	t.Setenv("SOME_FLAG", "off")
	assert.False(t, envBool("SOME_FLAG", true))

	t.Setenv("SOME_FLAG", "maybe")
	assert.True(t, envBool("SOME_FLAG", true))
}

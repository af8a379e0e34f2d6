package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("API_BASE_URL", "http://api.local/api/")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://api.local/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, StoreMemory, cfg.CredentialStore)
	assert.Equal(t, PaymentTest, cfg.PaymentMode)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.Equal(t, "tp_session", cfg.SessionCookie)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("GUARD_WAIT", "750ms")
	t.Setenv("COOKIE_SECURE", "yes")
	t.Setenv("CREDENTIAL_STORE", "MySQL")
	t.Setenv("DB_USER", "portal")
	t.Setenv("DB_NAME", "portal")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.GuardWait)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, StoreMySQL, cfg.CredentialStore)
	assert.True(t, cfg.IsProduction())
}

func TestRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 1, rl.RefillTokens)
	assert.Equal(t, 2*time.Second, rl.RefillInterval)
	assert.Equal(t, 10*time.Second, rl.TTL)
	assert.InDelta(t, 0.5, rl.RatePerSecond(), 1e-9)
}

func TestCacheMethodsAreNormalised(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	cc := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cc.Methods)
}

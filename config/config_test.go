package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/identity")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("MFA_SECRET_KEY", "0123456789abcdef0123456789abcdef")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessExpiryMin)
	assert.Equal(t, 10080, cfg.RefreshExpiryMin)
	assert.Equal(t, 5, cfg.FailedLoginThreshold)
	assert.Equal(t, 15, cfg.LockoutMinutes)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, 5, cfg.MaxActiveSessions)
	assert.False(t, cfg.MfaEnforced)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/identity")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("MFA_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("FAILED_LOGIN_THRESHOLD", "3")
	t.Setenv("MFA_ENFORCED", "true")
	t.Setenv("COOKIE_DOMAIN", "example.com")

	cfg := Load()

	assert.Equal(t, 3, cfg.FailedLoginThreshold)
	assert.True(t, cfg.MfaEnforced)
	assert.Equal(t, "example.com", cfg.CookieDomain)
}

func TestLoadIgnoresUnparseableInt(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/identity")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("MFA_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("LOCKOUT_MINUTES", "not-a-number")

	cfg := Load()

	assert.Equal(t, 15, cfg.LockoutMinutes)
}

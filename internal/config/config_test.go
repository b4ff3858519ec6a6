package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"DB_USER":    "app",
		"DB_HOST":    "localhost",
		"DB_PORT":    "3306",
		"DB_NAME":    "classrooms",
		"JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
	for _, k := range []string{
		"APP_ENV", "APP_PORT", "ACCESS_TOKEN_TTL_MIN", "REFRESH_TOKEN_TTL_DAYS", "BCRYPT_COST",
		"AMQP_URL", "AUDIT_CONSUMER_ENABLED", "AUDIT_LOG_PATH",
		"BOOTSTRAP_ADMIN_EMAIL", "BOOTSTRAP_ADMIN_PASSWORD", "BOOTSTRAP_ADMIN_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.Events.ConsumerEnabled)
	assert.Empty(t, cfg.Events.AMQPURL)
	assert.Equal(t, "logs/reservations.log", cfg.Events.AuditLogPath)
	assert.Empty(t, cfg.Admin.Email)
}

func TestLoadReportsMissingVars(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", " ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsBadInts(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "ten")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL_MIN")
}

func TestLoadBootstrapAdmin(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", " Root@Example.com ")

	_, err := Load()
	require.Error(t, err, "email without password")

	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "changeme")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", cfg.Admin.Email)
	assert.Equal(t, "Administrator", cfg.Admin.Name)
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL, "ttl is raised to five refill intervals")
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_PATHS", " /api/classrooms ,, ")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, []string{"/api/classrooms"}, cfg.Paths)
}

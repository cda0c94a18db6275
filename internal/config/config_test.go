package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROJECT_NAME", "DEBUG", "SECRET_KEY", "ACCESS_TOKEN_EXPIRE_MINUTES",
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_EMAIL",
		"HOST", "PORT", "ALLOWED_ORIGINS",
		"DATABASE_URL", "PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "account-service", cfg.App.ProjectName)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
	assert.Equal(t, "admin123", cfg.Auth.AdminPassword)
	assert.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_NAME", "accounts-prod")
	t.Setenv("SECRET_KEY", "configured-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/accounts")

	cfg := Load()

	assert.Equal(t, "accounts-prod", cfg.App.ProjectName)
	assert.Equal(t, "configured-secret", cfg.Auth.SecretKey)
	assert.Equal(t, 45*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/accounts", cfg.Postgres.DatabaseURL)
}

func TestSecretKeyGeneratedWhenUnset(t *testing.T) {
	clearEnv(t)

	first := Load()
	second := Load()

	require.NotEmpty(t, first.Auth.SecretKey)
	// A generated secret is random per load, not a fixed fallback.
	assert.NotEqual(t, first.Auth.SecretKey, second.Auth.SecretKey)
}

func TestInvalidTokenExpiryFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "not-a-number")

	cfg := Load()
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)

	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "-10")
	cfg = Load()
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
}

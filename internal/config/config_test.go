package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "DATABASE_URL", "HTTP_ADDR", "JWT_SECRET", "JWT_TTL", "REDIS_URL",
		"CHANGEFEED", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "INSTANCE_ID",
		"ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, ChangeFeedAuto, cfg.ChangeFeed)
	assert.NotEmpty(t, cfg.InstanceID)
	assert.NoError(t, bcrypt.CompareHashAndPassword(cfg.AdminPasswordHash, []byte(defaultAdminPassword)))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", EmbeddedDatabase)
	t.Setenv("CHANGEFEED", "Hooks")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EmbeddedDatabase, cfg.DatabaseURL)
	assert.Equal(t, ChangeFeedHooks, cfg.ChangeFeed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.NoError(t, bcrypt.CompareHashAndPassword(cfg.AdminPasswordHash, []byte("s3cret")))
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANGEFEED", "kafka")
	_, err := Load()
	assert.ErrorContains(t, err, "CHANGEFEED")

	clearEnv(t)
	t.Setenv("JWT_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_TTL")

	clearEnv(t)
	t.Setenv("ADMIN_PASSWORD_HASH", "plain-text")
	_, err = Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD_HASH")
}

func TestLoad_ProdChecks(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "x")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("DATABASE_URL", EmbeddedDatabase)
	_, err = Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://db/tracker")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
}

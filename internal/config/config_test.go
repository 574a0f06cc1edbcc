package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmehq/bookme/internal/config"
)

const validSecret = "a-development-secret-of-32-chars!"

// Tests use t.Setenv, so no t.Parallel here.

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKME_JWT_SECRET", validSecret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "bookme_dev", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "bookme.dev", cfg.Tenancy.BaseDomain)
	assert.Equal(t, []string{"localhost", "admin.bookme.dev"}, cfg.Tenancy.PlatformHosts)
	assert.False(t, cfg.SelfHosted)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKME_JWT_SECRET", validSecret)
	t.Setenv("BOOKME_DB_HOST", "db.internal")
	t.Setenv("BOOKME_DB_PORT", "5433")
	t.Setenv("BOOKME_JWT_ACCESS_TTL", "5m")
	t.Setenv("BOOKME_BASE_DOMAIN", "example.app")
	t.Setenv("BOOKME_PLATFORM_HOSTS", "admin.example.app, ops.example.app")
	t.Setenv("BOOKME_SELF_HOSTED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "example.app", cfg.Tenancy.BaseDomain)
	assert.Equal(t, []string{"admin.example.app", "ops.example.app"}, cfg.Tenancy.PlatformHosts)
	assert.True(t, cfg.SelfHosted)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("BOOKME_JWT_SECRET", "")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKME_JWT_SECRET")
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("BOOKME_JWT_SECRET", "too-short")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "BOOKME_DB_PORT", "not-a-port"},
		{"port out of range", "BOOKME_DB_PORT", "70000"},
		{"zero max conns", "BOOKME_DB_MAX_CONNS", "0"},
		{"bad duration", "BOOKME_JWT_ACCESS_TTL", "fifteen minutes"},
		{"negative ttl", "BOOKME_JWT_REFRESH_TTL", "-1h"},
		{"bad bool", "BOOKME_SELF_HOSTED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOOKME_JWT_SECRET", validSecret)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	db := config.DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "bookme",
		DBName:  "bookme_dev",
		SSLMode: "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=bookme password= dbname=bookme_dev sslmode=disable",
		db.DSN())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 90, cfg.Forecast.WindowDays)
	assert.Contains(t, cfg.Database.DSN(), "dbname=inventory")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/stock")
	t.Setenv("JWT_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/stock", cfg.Database.DSN())
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
}

func TestLoadRejectsBadValue(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.UsesDefaultDSN())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("DATABASE_DSN", "postgres://buffet@db/buffet")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.UsesDefaultDSN())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {"JWT_SECRET": ""},
		"short secret":     {"JWT_SECRET": "short"},
		"bad timeout":      {"JWT_SECRET": testSecret, "DB_TIMEOUT": "soon"},
		"negative timeout": {"JWT_SECRET": testSecret, "DB_TIMEOUT": "-1s"},
		"bad pool size":    {"JWT_SECRET": testSecret, "DB_MAX_OPEN_CONNS": "many"},
		"bad timezone":     {"JWT_SECRET": testSecret, "APP_TIMEZONE": "Mars/Olympus"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

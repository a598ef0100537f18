// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Multisite)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.DatabaseMaxOpenConns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MULTISITE", "true")
	t.Setenv("DATABASE_URL", "postgres://other:5432/db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Multisite)
	assert.Equal(t, "postgres://other:5432/db", cfg.DatabaseURL)
}

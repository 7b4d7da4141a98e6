package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BilyiPJATK/librarystore/config"
)

func Test_Load_When_NothingIsSet_UsesDefaults(t *testing.T) {
	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, ":4000", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	assert.True(t, cfg.HTTP.RateLimitEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func Test_Load_When_TheEnvironmentOverrides(t *testing.T) {
	// arrange
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "30s")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.False(t, cfg.HTTP.RateLimitEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func Test_Load_When_AValueIsUnparsable_FallsBackToTheDefault(t *testing.T) {
	// arrange
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "soon")

	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
}

func Test_DSN_Renders_AllConnectionSettings(t *testing.T) {
	// arrange
	db := config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "library",
		Password: "secret",
		Name:     "library",
		SSLMode:  "disable",
	}

	// assert
	assert.Equal(t,
		"host=localhost port=5432 user=library password=secret dbname=library sslmode=disable",
		db.DSN())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.MigrationsAuto)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DSN is required")
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestValidate_UnknownStore(t *testing.T) {
	cfg := &Config{Store: "sqlite", JWTSecret: "x"}
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE")
}

func TestLoadClient(t *testing.T) {
	t.Setenv("FACULTY_API_URL", "http://school.local")
	t.Setenv("FACULTY_POLL_INTERVAL", "500ms")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://school.local", cfg.APIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

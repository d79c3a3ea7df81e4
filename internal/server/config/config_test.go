package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.EnableCORS)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, InsecureDefaultSecret, cfg.Auth.Secret)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 300, cfg.AI.MaxTokens)
	assert.Equal(t, int64(32<<20), cfg.Limits.MaxBackupBytes)
	assert.Equal(t, int64(1<<20), cfg.Limits.MaxBodyBytes)
	assert.Equal(t, 100, cfg.Limits.EventListLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERENO_AUTH_SECRET", "a-real-production-secret")
	t.Setenv("SERENO_HTTP_ADDR", ":9000")
	t.Setenv("SERENO_DATABASE_HOST", "db.internal")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "a-real-production-secret", cfg.Auth.Secret)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Auth.InsecureSecret())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
environment: production
http:
  addr: ":8080"
auth:
  token_lifetime: 24h
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifetime)

	// Untouched keys keep their defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":8080\"\n"), 0o600))

	t.Setenv("SERENO_HTTP_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
}

func TestAuthConfig_InsecureSecret(t *testing.T) {
	assert.True(t, AuthConfig{Secret: InsecureDefaultSecret}.InsecureSecret())
	assert.False(t, AuthConfig{Secret: "something-else"}.InsecureSecret())
}

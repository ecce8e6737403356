package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "sessionid", cfg.Session.CookieName)
	assert.Equal(t, 14*24*time.Hour, cfg.Session.MaxAge())
	assert.Equal(t, "csrftoken", cfg.CSRF.CookieName)
	assert.Equal(t, "X-CSRFToken", cfg.CSRF.HeaderName)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9000"
  mode: test
database:
  driver: sqlite
  path: quiz.db
oauth:
  login_redirect_url: https://quiz.example.com/quizzes
`)
	t.Setenv("DB_ENGINE", "postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("GOOGLE_OAUTH2_CLIENT_ID", "client-123")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "quiz.db", cfg.Database.Path)
	assert.Equal(t, "https://quiz.example.com/quizzes", cfg.OAuth.LoginRedirectURL)
	assert.Equal(t, "client-123", cfg.OAuth.GoogleClientID)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("short secret in release mode", func(t *testing.T) {
		t.Setenv("DEBUG", "False")
		t.Setenv("SECRET_KEY", "short")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "secret key is too short")
	})

	t.Run("release mode with strong secret", func(t *testing.T) {
		t.Setenv("DEBUG", "False")
		t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "release", cfg.Server.Mode)
	})

	t.Run("unknown session store", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "memcached")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "unknown session store")
	})

	t.Run("unknown server mode", func(t *testing.T) {
		dir := writeConfig(t, "server:\n  mode: staging\n")
		_, err := LoadConfig(dir)
		assert.ErrorContains(t, err, "unknown server mode")
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := writeConfig(t, "server: [unclosed\n")
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}

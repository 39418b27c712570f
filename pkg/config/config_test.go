package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("BACKEND_HOST", "https://api.example.com/")

	cfg := LoadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.BackendHost)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.False(t, cfg.GoogleSSOEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("BACKEND_HOST", "api.example.com")
	t.Setenv("BACKEND_TIMEOUT", "5")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("OAUTH_REDIRECT_URI", "http://localhost:3000/auth/google/callback")

	cfg := LoadConfig()
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.LoginRateLimit)
	assert.True(t, cfg.GoogleSSOEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Environment: "development", Port: "3000", BackendHost: "http://api", BackendTimeout: time.Second,
			SessionSecret: "s", SessionStore: "memory"}
	}

	cfg := base()
	cfg.BackendHost = ""
	assert.ErrorContains(t, cfg.Validate(), "BACKEND_HOST")

	cfg = base()
	cfg.SessionStore = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DSN")

	cfg = base()
	cfg.SessionStore = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Environment = "production"
	cfg.SessionSecret = defaultSessionSecret
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	content := "# comment\nTT_A=1\nexport TT_B=\"two\"\nTT_C='three'\nnot a pair\nTT_KEEP=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("TT_KEEP", "env")
	t.Setenv("TT_A", "")
	t.Setenv("TT_B", "")
	t.Setenv("TT_C", "")

	loadEnvFile(path)
	assert.Equal(t, "1", os.Getenv("TT_A"))
	assert.Equal(t, "two", os.Getenv("TT_B"))
	assert.Equal(t, "three", os.Getenv("TT_C"))
	assert.Equal(t, "env", os.Getenv("TT_KEEP"))
}

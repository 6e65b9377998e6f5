package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 2*time.Second, cfg.Gemini.UploadPollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Gemini.UploadMaxWait)
	assert.Equal(t, 2048, cfg.Nano.MaxTokens)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "https://api.linkedin.com/v2", cfg.LinkedIn.BaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("NANO_BANANA_URL", "http://nano.local/generate")
	t.Setenv("GEMINI_UPLOAD_MAX_WAIT", "30s")
	t.Setenv("PUBLIC_URL", "https://remix.example.com/")
	t.Setenv("STORAGE_DRIVER", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gm-key", cfg.Gemini.APIKey)
	assert.Equal(t, "http://nano.local/generate", cfg.Nano.URL)
	assert.Equal(t, 30*time.Second, cfg.Gemini.UploadMaxWait)
	assert.Equal(t, "https://remix.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "redis", cfg.Storage.Driver)
}

func TestReadSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("secret-token\n"), 0o600))

	t.Setenv("LINKEDIN_ACCESS_TOKEN", "")
	t.Setenv("LINKEDIN_ACCESS_TOKEN_FILE", path)

	readSecret("LINKEDIN_ACCESS_TOKEN")
	assert.Equal(t, "secret-token", os.Getenv("LINKEDIN_ACCESS_TOKEN"))
}

func TestReadSecretKeepsDirectValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))

	t.Setenv("YOUTUBE_API_KEY", "direct")
	t.Setenv("YOUTUBE_API_KEY_FILE", path)

	readSecret("YOUTUBE_API_KEY")
	assert.Equal(t, "direct", os.Getenv("YOUTUBE_API_KEY"))
}

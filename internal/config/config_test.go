package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, env := range envKeys {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.GeminiModel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 1, cfg.Workers)
	assert.Empty(t, cfg.PostgresDSN)
	assert.False(t, cfg.EmailEnabled())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("EMAIL_API_KEY", "sg-key")
	t.Setenv("FROM_ADDRESS", "noreply@example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.GoogleAPIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.EmailEnabled())
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "planwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
redis_addr: redis:6379
postgres_dsn: postgres://planwise@db/planwise
cors_origins:
  - https://app.example
workers: 4
`), 0o600))
	t.Setenv("REDIS_ADDR", "cache:6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, "postgres://planwise@db/planwise", cfg.PostgresDSN)
	assert.Equal(t, []string{"https://app.example"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planwise.yaml"), []byte("log_level: debug\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Chdir(t.TempDir())
	t.Setenv("WORKER_CONCURRENCY", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "workers")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b,"))
	assert.Equal(t, []string{"x", "1"}, splitList([]any{"x", 1}))
	assert.Equal(t, []string{"y"}, splitList([]string{" y "}))
	assert.Empty(t, splitList(nil))
}

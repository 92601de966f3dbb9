package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "PERPLEXITY_API_KEY", "PERPLEXITY_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"MESHBUILDER_ENV", "MESHBUILDER_LOG_LEVEL", "MESHBUILDER_STATIC_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "lan", cfg.Server.Bind)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "https://api.perplexity.ai", cfg.Providers.Perplexity.BaseURL)
	assert.Equal(t, 45, cfg.Providers.Perplexity.TimeoutSeconds)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.OpenAI.Model)
	assert.Equal(t, int64(DefaultMessagesPerAgent), cfg.Mesh.MessagesPerAgent)
	assert.Equal(t, 3200, cfg.Mesh.SeedDelayMs)
	assert.True(t, cfg.Mesh.AutoSeedEnabled())
	assert.Equal(t, "sqlite", cfg.Cache.Store)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, Validate(&cfg))
}

func TestLoadMissingFile(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.False(t, cfg.Providers.Perplexity.Configured())
}

func TestLoadValidYAML(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 8080
  bind: loopback
  env: production
providers:
  perplexity:
    apiKey: pplx-test
    model: sonar-pro
  openai:
    apiKey: sk-test
mesh:
  seedDelayMs: 500
  autoSeed: false
cache:
  store: memory
logging:
  level: debug
  consoleStyle: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.ListenHost())
	assert.True(t, cfg.Server.Production())
	assert.Equal(t, "pplx-test", cfg.Providers.Perplexity.APIKey)
	assert.Equal(t, "sonar-pro", cfg.Providers.Perplexity.Model)
	assert.Equal(t, DefaultPerplexityURL, cfg.Providers.Perplexity.BaseURL)
	assert.True(t, cfg.Providers.OpenAI.Configured())
	assert.Equal(t, DefaultOpenAIModel, cfg.Providers.OpenAI.Model)
	assert.Equal(t, 500, cfg.Mesh.SeedDelayMs)
	assert.Equal(t, int64(DefaultMessagesPerAgent), cfg.Mesh.MessagesPerAgent)
	assert.False(t, cfg.Mesh.AutoSeedEnabled())
	assert.Equal(t, "memory", cfg.Cache.Store)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("PORT", "4100")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-env")
	t.Setenv("PERPLEXITY_MODEL", "sonar-reasoning")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("MESHBUILDER_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port)
	assert.Equal(t, "pplx-env", cfg.Providers.Perplexity.APIKey)
	assert.Equal(t, "sonar-reasoning", cfg.Providers.Perplexity.Model)
	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Providers.OpenAI.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidPortEnvIgnored(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("PORT", "not-a-port")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadExpandsKeyReferences(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MY_PPLX_KEY", "expanded-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  perplexity:\n    apiKey: ${MY_PPLX_KEY}\n  openai:\n    apiKey: ${UNSET_MESHBUILDER_VAR}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Providers.Perplexity.APIKey)
	assert.Equal(t, "${UNSET_MESHBUILDER_VAR}", cfg.Providers.OpenAI.APIKey)
}

func TestRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Empty(t, raw)

	SetValueAtPath(raw, []string{"server", "port"}, 9000)
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	v, ok := GetValueAtPath(loaded, []string{"server", "port"})
	require.True(t, ok)
	assert.Equal(t, 9000, v)
}

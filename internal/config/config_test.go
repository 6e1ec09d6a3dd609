package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Gemini.APIKey = "gemini-key"
	cfg.Security.AdminToken = "admin-token"
	return cfg
}

func TestValidateDefaultsNeedSecrets(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is required")
	assert.Contains(t, err.Error(), "ADMIN_TOKEN is required")

	assert.NoError(t, validConfig().Validate())
}

func TestValidateProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Calendar.Provider = ProviderKASI
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KASI_SERVICE_KEY")

	cfg.Calendar.KASIServiceKey = "svc"
	assert.NoError(t, cfg.Validate())

	cfg.Interpretation.Provider = ProviderOpenAI
	require.Error(t, cfg.Validate())
	cfg.Interpretation.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.Interpretation.Provider = "claude"
	assert.Error(t, cfg.Validate())
}

func TestValidateDisablesRateLimitWithoutRPS(t *testing.T) {
	cfg := validConfig()
	cfg.Security.RateLimitEnabled = true
	cfg.Security.RateLimitRPS = 0

	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Security.RateLimitEnabled)
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  read_timeout: 5s
gemini:
  api_key: from-file
calendar:
  provider: kasi
  kasi_service_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	assert.Equal(t, ProviderKASI, cfg.Calendar.Provider)
	// 未出现的字段保持默认
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.ImageModel)
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))
	assert.Error(t, LoadFile(path, Default()))
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":7000}}`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("ADMIN_TOKEN", "env-admin")
	t.Setenv("SERVER_PORT", "7100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:7100", cfg.GetAddress())
}

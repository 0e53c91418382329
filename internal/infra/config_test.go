package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, int64(30), cfg.Checker.PublicRateLimit)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfigReadsAPIKeyFromEnv(t *testing.T) {
	// Ключ провайдера живет только в ENV, файла для него нет
	t.Setenv("OPENAI_API_KEY", "sk-test-123")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.OpenAI.APIKey)
}

func TestLoadConfigEnvOverridesDefault(t *testing.T) {
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigAuthKeyFromEnvData(t *testing.T) {
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "-----BEGIN PUBLIC KEY-----")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []byte("-----BEGIN PUBLIC KEY-----"), cfg.Auth.PublicKey)
}

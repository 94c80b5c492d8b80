package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: test-token
database:
  path: data/test.db
api:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.True(t, cfg.API.HTTP.Enabled)
	assert.True(t, cfg.API.Auth.Enabled)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "x-api-extra", cfg.API.Auth.HeaderExtra)
	assert.Equal(t, "exports", cfg.Exports.Path)
	assert.Equal(t, 20, cfg.Bot.RateLimitMessages)
	assert.Equal(t, 60, cfg.Bot.RateLimitWindow)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "secret-token")

	path := writeConfig(t, `
telegram:
  bot_token: ${TEST_BOT_TOKEN}
database:
  path: data/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Telegram.BotToken)
}

func TestValidateRequiresToken(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/test.db
`)

	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, `
telegram:
  bot_token: YOUR_BOT_TOKEN_HERE
database:
  path: data/test.db
`)

	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateRequiresDatabasePath(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: test-token
`)

	_, err := Load(path)
	assert.Error(t, err)
}

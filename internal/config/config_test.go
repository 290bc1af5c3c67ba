package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "journeylog.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Europe/London", cfg.Timezone)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.Equal(t, "Northern Ireland, UK", cfg.Geocode.Region)
	assert.Equal(t, 1, cfg.Routing.MinIntervalSecs)
	assert.Empty(t, cfg.Telegram.AllowedChatIDs)
}

func TestLoadEnvOverrides(t *testing.T) {
	chtemp(t)
	t.Setenv("JOURNEYLOG_STORE_DRIVER", "postgres")
	t.Setenv("JOURNEYLOG_LOG_LEVEL", "debug")
	t.Setenv("JOURNEYLOG_TELEGRAM_TOKEN", "tok-123")
	t.Setenv("JOURNEYLOG_ROUTING_ORS_API_KEY", "ors-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tok-123", cfg.Telegram.Token)
	assert.Equal(t, "ors-key", cfg.Routing.ORSKey)
}

func TestLoadAllowedChatIDsFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("JOURNEYLOG_TELEGRAM_ALLOWED_CHAT_IDS", "100, 200")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AllowedChatIDs)
}

func TestLoadAllowedChatIDsSingleFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("JOURNEYLOG_TELEGRAM_ALLOWED_CHAT_IDS", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, cfg.Telegram.AllowedChatIDs)
}

func TestLoadAllowedChatIDsRejectsNonNumeric(t *testing.T) {
	chtemp(t)
	t.Setenv("JOURNEYLOG_TELEGRAM_ALLOWED_CHAT_IDS", "100,abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	chtemp(t)
	content := `
store:
  driver: postgres
  database_url: postgres://localhost/journeylog
journey:
  home_address: 19 Knock Green, Belfast
telegram:
  allowed_chat_ids: [100, 200]
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "19 Knock Green, Belfast", cfg.Journey.HomeAddress)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AllowedChatIDs)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

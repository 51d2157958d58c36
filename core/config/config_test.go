package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "polling"}}
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, DefaultSchedulePath, cfg.Storage.SchedulePath)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, "Local", cfg.Locale.Timezone)
	assert.NotNil(t, cfg.Location())
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]Config{
		"no token":     {},
		"bad mode":     {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook url":  {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}},
		"bad exclude":  {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline_query"}}},
		"bad timezone": {Telegram: TelegramConfig{Token: "t"}, Locale: LocaleConfig{Timezone: "Mars/Olympus"}},
		"neg interval": {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{IntervalMS: -1}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Normalize(&cfg))
		})
	}
}

func TestNormalizeLowercasesExclusions(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback "}},
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{UpdateCallback}, cfg.RateLimit.ExcludeUpdates)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  token: from-file
  run_mode: longpoll
storage:
  schedule_path: data/schedule.json
locale:
  timezone: UTC
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("METRICS_LISTEN", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "data/schedule.json", cfg.Storage.SchedulePath)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

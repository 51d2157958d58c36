package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/schedulebot/core/config"
)

func TestSettingsFromDefaults(t *testing.T) {
	s := settingsFrom(nil)
	if s.format != formatJSON || s.level != slog.LevelInfo || s.profile != "prod" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.sampleN != 1 || s.sampleD != 50 {
		t.Fatalf("unexpected sample ratio %d/%d", s.sampleN, s.sampleD)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Logging = coreconfig.LoggingConfig{
		Level:       "Warning",
		Profile:     "DEV",
		KeysOrder:   "ts, event,,level",
		DebugSample: "off",
		Dir:         "/var/log/bot",
		BotFile:     "bot.log",
	}
	s := settingsFrom(cfg)
	if s.format != formatKV {
		t.Fatalf("dev profile should default to kv, got %s", s.format)
	}
	if s.level != slog.LevelWarn {
		t.Fatalf("level = %v", s.level)
	}
	if len(s.order) != 3 || s.order[1] != "event" {
		t.Fatalf("order = %v", s.order)
	}
	if s.sampleN != 0 || s.sampleD != 0 {
		t.Fatalf("off should disable sampling, got %d/%d", s.sampleN, s.sampleD)
	}
	if s.file != filepath.Join("/var/log/bot", "bot.log") {
		t.Fatalf("file = %s", s.file)
	}

	cfg.Logging.Format = "json"
	if got := settingsFrom(cfg).format; got != formatJSON {
		t.Fatalf("explicit json format ignored: %s", got)
	}
}

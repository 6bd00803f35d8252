package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
bot:
  token: "bot-token"
database:
  url: "postgres://localhost/notifier"
platform:
  base_url: "http://localhost:8000"
`

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, minimalConfig)

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dispatch.ReminderHour != 12 {
		t.Errorf("reminder_hour default = %d, want 12", cfg.Dispatch.ReminderHour)
	}
	if cfg.Dispatch.PurgeHour != 3 {
		t.Errorf("purge_hour default = %d, want 3", cfg.Dispatch.PurgeHour)
	}
	if cfg.Dispatch.BatchSize != 1000 {
		t.Errorf("batch_size default = %d, want 1000", cfg.Dispatch.BatchSize)
	}
	if cfg.Bot.Workers != 4 {
		t.Errorf("workers default = %d, want 4", cfg.Bot.Workers)
	}
}

func TestLoadConfig_MidnightHoursSurvive(t *testing.T) {
	path := writeConfigFile(t, minimalConfig+`
dispatch:
  reminder_hour: 0
  purge_hour: 0
`)

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dispatch.ReminderHour != 0 {
		t.Errorf("explicit reminder_hour 0 rewritten to %d", cfg.Dispatch.ReminderHour)
	}
	if cfg.Dispatch.PurgeHour != 0 {
		t.Errorf("explicit purge_hour 0 rewritten to %d", cfg.Dispatch.PurgeHour)
	}
}

func TestLoadConfig_RejectsOutOfRangeHour(t *testing.T) {
	path := writeConfigFile(t, minimalConfig+`
dispatch:
  reminder_hour: 24
`)

	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected an error for reminder_hour 24")
	}
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	path := writeConfigFile(t, minimalConfig)

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "env-token" {
		t.Errorf("bot token = %q, want env override", cfg.Bot.Token)
	}
}

func TestLoadConfig_MissingRequiredFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, `
bot:
  token: "bot-token"
`)

	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected an error for missing database.url")
	}
}

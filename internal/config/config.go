package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PlatformConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type DispatchConfig struct {
	// BatchSize bounds one dispatch cycle; the external channel's rate
	// ceiling makes this the effective max messages per poll interval.
	BatchSize     int           `yaml:"batch_size"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	RetentionDays int           `yaml:"retention_days"`
	ReminderHour  int           `yaml:"reminder_hour"`
	PurgeHour     int           `yaml:"purge_hour"`
}

type OpsConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Platform PlatformConfig `yaml:"platform"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Ops      OpsConfig      `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	// Hour fields distinguish "absent" from an explicit midnight 0.
	cfg.Dispatch.ReminderHour = -1
	cfg.Dispatch.PurgeHour = -1
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment wins over the file for secrets.
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.Platform.Token = v
	}

	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Platform.BaseURL == "" {
		return nil, errors.New("platform.base_url is required")
	}
	if cfg.Dispatch.ReminderHour < 0 || cfg.Dispatch.ReminderHour > 23 ||
		cfg.Dispatch.PurgeHour < 0 || cfg.Dispatch.PurgeHour > 23 {
		return nil, errors.New("dispatch hours must be within 0..23")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Platform.Timeout <= 0 {
		cfg.Platform.Timeout = 10 * time.Second
	}
	if cfg.Dispatch.BatchSize <= 0 {
		cfg.Dispatch.BatchSize = 1000
	}
	if cfg.Dispatch.PollInterval <= 0 {
		cfg.Dispatch.PollInterval = 10 * time.Second
	}
	if cfg.Dispatch.RetentionDays <= 0 {
		cfg.Dispatch.RetentionDays = 30
	}
	if cfg.Dispatch.ReminderHour == -1 {
		cfg.Dispatch.ReminderHour = 12
	}
	if cfg.Dispatch.PurgeHour == -1 {
		cfg.Dispatch.PurgeHour = 3
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 9090
	}
}

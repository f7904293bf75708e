package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all configuration for the application. The bot token, the
// database URL and the operator identity are required; the process must not
// start without them.
type AppConfig struct {
	TelegramToken   string `envconfig:"BOT_TOKEN" required:"true"`
	DatabaseURL     string `envconfig:"DATABASE_URL" required:"true"`
	AdminChatID     int64  `envconfig:"ADMIN_CHAT_ID" required:"true"`
	ManagerUsername string `envconfig:"MANAGER_USERNAME" required:"true"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// CronSpecReminder drives the daily "don't forget to post" nudge for
	// users with a stale active test.
	CronSpecReminder string `envconfig:"CRON_SPEC_REMINDER" default:"0 12 * * *"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is empty")
	}
	// envconfig's required tag only fires for unset variables, not empty ones.
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("ADMIN_CHAT_ID must be a non-zero Telegram ID")
	}

	// Stored without the @ so it can be embedded in t.me links.
	cfg.ManagerUsername = strings.TrimPrefix(strings.TrimSpace(cfg.ManagerUsername), "@")
	if cfg.ManagerUsername == "" {
		return nil, fmt.Errorf("MANAGER_USERNAME is empty")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	return cfg, nil
}

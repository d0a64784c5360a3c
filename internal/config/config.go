// Package config loads process configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        `env:"ENV" env-default:"local"`
	DatabasePath   string        `env:"DATABASE_PATH" env-default:"bizbooster.db"`
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64         `env:"TELEGRAM_CHAT_ID"`
	CheckInterval  time.Duration `env:"SCHEDULER_INTERVAL" env-default:"1m"`

	AIAPIKey  string `env:"AI_API_KEY"`
	AIBaseURL string `env:"AI_BASE_URL" env-default:"https://api.openai.com/v1"`
	AIModel   string `env:"AI_MODEL" env-default:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

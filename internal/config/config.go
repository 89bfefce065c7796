package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// DatabaseURL selects the Postgres session store; empty runs on the
	// in-memory store.
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`

	// OpenAI: empty key keeps the template prescriber.
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Doctor report delivery; both must be set to enable it.
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	DoctorChatID  int64  `env:"DOCTOR_CHAT_ID"`

	// MedicineDataset overrides the embedded CSV.
	MedicineDataset string `env:"MEDICINE_DATASET"`

	SessionTTL             time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval          time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	MaxQuestionsPerSymptom int           `env:"MAX_QUESTIONS_PER_SYMPTOM" envDefault:"8"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
